package markdown

import (
	"path"
	"path/filepath"

	"github.com/dshills/krokidoc/internal/redact"
	"github.com/dshills/krokidoc/internal/render"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// blockRenderer writes Block nodes as HTML.
type blockRenderer struct {
	// imagesDir prefixes cached file names in img src attributes.
	imagesDir string
}

func (r *blockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindDiagram, r.render)
}

func (r *blockRenderer) render(w util.BufWriter, src []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	b := node.(*Block)
	res := b.Outcome.Result

	if b.Outcome.Err != nil {
		_, _ = w.WriteString(`<figure class="` + b.info.class(b.info.Format) + ` kroki-error">` + "\n")
		_, _ = w.WriteString(`<pre class="kroki-error-message">`)
		_, _ = w.Write(util.EscapeHTML([]byte(redact.Secrets(b.Outcome.Err.Error()))))
		_, _ = w.WriteString("</pre>\n")
		_, _ = w.WriteString(`<pre><code class="language-` + b.info.Type + `">`)
		_, _ = w.Write(util.EscapeHTML([]byte(b.source)))
		_, _ = w.WriteString("</code></pre>\n")
		r.caption(w, b)
		_, _ = w.WriteString("</figure>\n")
		return ast.WalkSkipChildren, nil
	}

	_, _ = w.WriteString(`<figure class="` + b.info.class(res.Diagram.Format) + `">` + "\n")
	switch res.Kind {
	case render.KindText:
		_, _ = w.WriteString("<pre>")
		_, _ = w.Write(util.EscapeHTML([]byte(res.Text)))
		_, _ = w.WriteString("</pre>\n")
	default:
		_, _ = w.WriteString(`<img src="`)
		_, _ = w.Write(util.EscapeHTML([]byte(r.src(res))))
		_, _ = w.WriteString(`" alt="`)
		_, _ = w.Write(util.EscapeHTML([]byte(b.info.alt())))
		_, _ = w.WriteString(`">` + "\n")
	}
	r.caption(w, b)
	_, _ = w.WriteString("</figure>\n")
	return ast.WalkSkipChildren, nil
}

func (r *blockRenderer) caption(w util.BufWriter, b *Block) {
	if b.info.Title == "" {
		return
	}
	_, _ = w.WriteString("<figcaption>")
	_, _ = w.Write(util.EscapeHTML([]byte(b.info.Title)))
	_, _ = w.WriteString("</figcaption>\n")
}

func (r *blockRenderer) src(res render.Result) string {
	if res.Kind == render.KindFile && r.imagesDir != "" {
		return path.Join(filepath.ToSlash(r.imagesDir), res.Target)
	}
	return res.Target
}
