package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/krokidoc/internal/markdown"
)

// Writer writes a document in a specific format.
type Writer interface {
	Write(w io.Writer, doc *markdown.Document) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "html", "":
		return &HTMLWriter{}, nil
	case "fragment":
		return &FragmentWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "text":
		return &TextWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteDocument writes the document to the specified output (file path or stdout).
func WriteDocument(doc *markdown.Document, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, doc)
}
