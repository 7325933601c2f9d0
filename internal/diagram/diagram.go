package diagram

import (
	"fmt"
	"strings"
)

// DefaultFormat is used when a request carries no format hint.
const DefaultFormat = "svg"

var textFormats = map[string]bool{
	"txt":  true,
	"atxt": true,
	"utxt": true,
}

// Types lists the diagram types served by Kroki.
var Types = []string{
	"actdiag", "blockdiag", "bpmn", "bytefield", "c4plantuml", "d2", "dbml",
	"ditaa", "dot", "erd", "excalidraw", "graphviz", "mermaid", "nomnoml",
	"nwdiag", "packetdiag", "pikchr", "plantuml", "rackdiag", "seqdiag",
	"structurizr", "svgbob", "symbolator", "tikz", "umlet", "vega", "vegalite",
	"wavedrom", "wireviz",
}

// svgOnlyTypes cannot be rendered to png by the service.
var svgOnlyTypes = map[string]bool{
	"mermaid":  true,
	"nomnoml":  true,
	"svgbob":   true,
	"wavedrom": true,
}

var knownTypes = func() map[string]bool {
	m := make(map[string]bool, len(Types))
	for _, t := range Types {
		m[t] = true
	}
	return m
}()

// Diagram is one diagram to render. It is never mutated after creation.
type Diagram struct {
	Type   string
	Format string
	Text   string
}

// New creates a Diagram, lower-casing type and format. An empty format
// becomes DefaultFormat.
func New(diagramType, format, text string) Diagram {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = DefaultFormat
	}
	return Diagram{
		Type:   strings.ToLower(strings.TrimSpace(diagramType)),
		Format: format,
		Text:   text,
	}
}

// IsText reports whether the diagram renders to inline text.
func (d Diagram) IsText() bool {
	return IsTextFormat(d.Format)
}

// URI returns the GET URL for the diagram:
// {serverURL}/{type}/{format}/{token}.
func (d Diagram) URI(serverURL string) (string, error) {
	token, err := Encode(d.Text)
	if err != nil {
		return "", err
	}
	return d.PostURL(serverURL) + "/" + token, nil
}

// PostURL returns the POST endpoint for the diagram: {serverURL}/{type}/{format}.
func (d Diagram) PostURL(serverURL string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(serverURL, "/"), d.Type, d.Format)
}

// IsTextFormat reports whether format is one of txt, atxt or utxt.
func IsTextFormat(format string) bool {
	return textFormats[strings.ToLower(format)]
}

// IsKnownType reports whether t is a diagram type the service understands.
func IsKnownType(t string) bool {
	return knownTypes[strings.ToLower(t)]
}

// SupportsPNG reports whether the diagram type can be rendered to png.
func SupportsPNG(t string) bool {
	return !svgOnlyTypes[strings.ToLower(t)]
}

// Payload is the body returned by the rendering service.
type Payload struct {
	Data []byte
	// Text is set when the payload came from a text format and should be
	// treated as UTF-8 content rather than an opaque blob.
	Text bool
}

// String returns the payload as a string.
func (p Payload) String() string {
	return string(p.Data)
}
