// Package transport submits diagrams to a Kroki server.
//
// [Choose] decides between GET (source embedded in the URL) and POST (raw
// source as the request body) from the configured [Method] and the length of
// the GET URL. [Transport] applies that decision and issues the request
// through a [Client]; the default [HTTPClient] is backed by go-retryablehttp.
// Clients are injected so tests can point them at httptest servers.
//
// Non-2xx responses and network failures surface as [*Error]. Nothing is
// retried unless the caller configures retries explicitly.
package transport
