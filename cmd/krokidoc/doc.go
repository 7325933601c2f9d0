// Krokidoc is a CLI for rendering diagrams embedded in documents through a
// Kroki server.
//
// It converts Markdown documents, rendering every PlantUML, Graphviz, Mermaid
// or other Kroki-supported fenced block either as a link to the server or as
// an image file downloaded next to the output, with deterministic exit codes
// suitable for CI.
//
// Usage:
//
//	krokidoc render README.md --out site/index.html   # convert a document
//	krokidoc render README.md --fetch --out-dir site  # download images too
//	krokidoc diagram graphviz deps.dot --out deps.svg # render one diagram
//	krokidoc diagram plantuml seq.puml --url          # print the GET URL
//	krokidoc encode seq.puml                          # print the encoded source
//	krokidoc doctor                                   # check the server
package main
