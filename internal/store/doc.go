// Package store provides an optional shared artifact store that sits behind
// the on-disk diagram cache.
//
// When several machines render the same documents (CI runners, build farms),
// a [RedisStore] lets one of them fetch a diagram from the rendering service
// and the rest copy the bytes from Redis instead. Entries are keyed by the
// content-addressed artifact file name under the /diagrams/kroki/ namespace
// and expire after a configurable TTL.
package store
