package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/krokidoc/internal/markdown"
)

// TextWriter outputs a human-readable diagram summary.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, doc *markdown.Document) error {
	ew := &errWriter{w: w}

	title := doc.Title
	if title == "" {
		title = "(untitled)"
	}
	ew.printf("krokidoc: %s\n", title)
	ew.println(strings.Repeat("─", 60))
	failed := doc.Failed()
	ew.printf("Diagrams: %d total", len(doc.Diagrams))
	if failed > 0 {
		ew.printf(" (%d failed)", failed)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	if len(doc.Diagrams) == 0 {
		ew.println("\nNo diagram blocks found.")
		return ew.err
	}

	for i, d := range doc.Diagrams {
		ew.printf("\n%d. %s/%s", i+1, d.Type, d.Format)
		if d.Error != "" {
			ew.printf("  FAILED\n   %s\n", d.Error)
			continue
		}
		ew.printf("  [%s]\n", d.Kind)
		if d.Target != "" {
			ew.printf("   %s\n", d.Target)
		}
	}

	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
