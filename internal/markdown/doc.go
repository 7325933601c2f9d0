// Package markdown renders Markdown documents whose fenced code blocks hold
// diagram source.
//
// A fenced block whose language is a Kroki diagram type is replaced by a
// [Block] node once the whole document has been parsed, so every diagram in
// the document is rendered in one parallel batch. The info string may carry a
// format and attributes:
//
//	```plantuml png alt="Login flow" title="Figure 1"
//	```graphviz format=svg role=wide
//
// Blocks render as a <figure> with an <img> for image formats, a <pre> for
// text formats, and an error figure holding the original source when the
// diagram failed. One failed diagram never prevents the rest of the document
// from rendering.
package markdown
