// Package render turns diagram requests into text, remote image references
// or cached image files.
//
// Text formats (txt, atxt, utxt) are always fetched and returned inline.
// Image formats either resolve to the GET URL of the rendering service
// (reference mode, no network traffic) or are fetched and stored in the
// content-addressed cache (fetch mode). [Engine.RenderAll] renders many
// requests in parallel with bounded concurrency; a failure only affects the
// request that caused it.
package render
