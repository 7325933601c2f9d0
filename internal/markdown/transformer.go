package markdown

import (
	"context"
	"strings"

	"github.com/dshills/krokidoc/internal/diagram"
	"github.com/dshills/krokidoc/internal/render"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// transformer renders every diagram fence after parsing and swaps in Blocks.
type transformer struct {
	ctx    context.Context
	engine *render.Engine
	blocks []*Block
}

func (t *transformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	src := reader.Source()

	// Collect first, replace after: the tree must not change during Walk.
	var fences []*ast.FencedCodeBlock
	var infos []blockInfo
	var reqs []render.Request
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		cb, ok := node.(*ast.FencedCodeBlock)
		if !ok || cb.Info == nil {
			return ast.WalkContinue, nil
		}
		info := parseInfo(string(cb.Info.Segment.Value(src)))
		if !diagram.IsKnownType(info.Type) {
			return ast.WalkContinue, nil
		}
		fences = append(fences, cb)
		infos = append(infos, info)
		reqs = append(reqs, render.Request{Type: info.Type, Format: info.Format, Text: blockText(cb, src)})
		return ast.WalkSkipChildren, nil
	})

	if len(fences) == 0 {
		return
	}

	outcomes := t.engine.RenderAll(t.ctx, reqs)
	for i, cb := range fences {
		b := &Block{info: infos[i], source: reqs[i].Text, Outcome: outcomes[i]}
		if parent := cb.Parent(); parent != nil {
			parent.ReplaceChild(parent, cb, b)
		}
		t.blocks = append(t.blocks, b)
	}
}

func blockText(cb *ast.FencedCodeBlock, src []byte) string {
	var b strings.Builder
	lines := cb.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(src))
	}
	return b.String()
}
