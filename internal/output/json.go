package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/krokidoc/internal/markdown"
)

// JSONWriter outputs the diagram report as JSON.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, doc *markdown.Document) error {
	report := struct {
		Title    string                   `json:"title"`
		Total    int                      `json:"total"`
		Failed   int                      `json:"failed"`
		Diagrams []markdown.DiagramReport `json:"diagrams"`
	}{
		Title:    doc.Title,
		Total:    len(doc.Diagrams),
		Failed:   doc.Failed(),
		Diagrams: doc.Diagrams,
	}
	if report.Diagrams == nil {
		report.Diagrams = []markdown.DiagramReport{}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
