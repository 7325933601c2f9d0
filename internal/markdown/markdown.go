package markdown

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dshills/krokidoc/internal/redact"
	"github.com/dshills/krokidoc/internal/render"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Extension plugs diagram rendering into a goldmark instance.
type Extension struct {
	// Context is passed to every render request.
	Context context.Context
	Engine  *render.Engine
	// ImagesDir prefixes cached image file names in the generated HTML.
	ImagesDir string

	t *transformer
}

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	ctx := e.Context
	if ctx == nil {
		ctx = context.Background()
	}
	e.t = &transformer{ctx: ctx, engine: e.Engine}
	m.Parser().AddOptions(parser.WithASTTransformers(util.Prioritized(e.t, 100)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(&blockRenderer{imagesDir: e.ImagesDir}, 100)))
}

// Blocks returns the diagram blocks found by the last conversion.
func (e *Extension) Blocks() []*Block {
	if e.t == nil {
		return nil
	}
	return e.t.blocks
}

// DiagramReport summarizes one diagram of a converted document.
type DiagramReport struct {
	Type   string `json:"type"`
	Format string `json:"format"`
	Kind   string `json:"kind"`
	Target string `json:"target,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Document is a converted Markdown document.
type Document struct {
	Title    string          `json:"title"`
	HTML     []byte          `json:"-"`
	Diagrams []DiagramReport `json:"diagrams"`
}

// Failed counts the diagrams that could not be rendered.
func (d *Document) Failed() int {
	n := 0
	for _, r := range d.Diagrams {
		if r.Error != "" {
			n++
		}
	}
	return n
}

// Converter converts Markdown to HTML with diagrams rendered.
type Converter struct {
	engine    *render.Engine
	imagesDir string
}

// NewConverter creates a Converter. imagesDir is the path, relative to the
// HTML output, where cached images are served from.
func NewConverter(engine *render.Engine, imagesDir string) *Converter {
	return &Converter{engine: engine, imagesDir: imagesDir}
}

// Convert parses src, renders its diagrams and returns the HTML document.
func (c *Converter) Convert(ctx context.Context, src []byte) (*Document, error) {
	ext := &Extension{Context: ctx, Engine: c.engine, ImagesDir: c.imagesDir}
	md := goldmark.New(goldmark.WithExtensions(extension.GFM, ext))

	root := md.Parser().Parse(text.NewReader(src))
	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, src, root); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}

	doc := &Document{Title: title(root, src), HTML: buf.Bytes()}
	for _, b := range ext.Blocks() {
		res := b.Outcome.Result
		r := DiagramReport{
			Type:   b.info.Type,
			Format: res.Diagram.Format,
			Kind:   res.Kind.String(),
			Target: res.Target,
		}
		if b.Outcome.Err != nil {
			r.Format = b.info.Format
			r.Kind = "error"
			r.Error = redact.Secrets(b.Outcome.Err.Error())
		}
		doc.Diagrams = append(doc.Diagrams, r)
	}
	return doc, nil
}

// title returns the text of the first level-one heading.
func title(root ast.Node, src []byte) string {
	var out string
	_ = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := node.(*ast.Heading)
		if !ok || h.Level != 1 {
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		_ = ast.Walk(h, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if t, ok := n.(*ast.Text); ok && entering {
				b.Write(t.Segment.Value(src))
			}
			return ast.WalkContinue, nil
		})
		out = b.String()
		return ast.WalkStop, nil
	})
	return out
}
