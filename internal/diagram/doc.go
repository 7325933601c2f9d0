// Package diagram models a single diagram render request and its encodings.
//
// A [Diagram] is an immutable (type, format, source) triple. [Encode] turns
// diagram source into the token the Kroki service expects in GET URLs: the
// UTF-8 source deflated with zlib at best compression, then base64 encoded
// with the URL-safe alphabet. [Diagram.URI] assembles the full GET URL, which
// doubles as the diagram's identity for on-disk caching.
package diagram
