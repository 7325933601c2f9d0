package output

import (
	"fmt"
	"html/template"
	"io"

	"github.com/dshills/krokidoc/internal/markdown"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
figure.kroki { margin: 1em 0; }
figure.kroki img { max-width: 100%; }
figure.kroki-error pre.kroki-error-message { color: #b00020; }
</style>
</head>
<body>
{{.Body}}</body>
</html>
`))

// HTMLWriter outputs a standalone HTML page.
type HTMLWriter struct{}

func (h *HTMLWriter) Write(w io.Writer, doc *markdown.Document) error {
	title := doc.Title
	if title == "" {
		title = "Document"
	}
	err := pageTemplate.Execute(w, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		// Body is goldmark output with raw HTML disabled.
		Body: template.HTML(doc.HTML),
	})
	if err != nil {
		return fmt.Errorf("writing HTML: %w", err)
	}
	return nil
}

// FragmentWriter outputs the rendered body without a page wrapper.
type FragmentWriter struct{}

func (f *FragmentWriter) Write(w io.Writer, doc *markdown.Document) error {
	if _, err := w.Write(doc.HTML); err != nil {
		return fmt.Errorf("writing HTML: %w", err)
	}
	return nil
}
