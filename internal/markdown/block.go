package markdown

import (
	"fmt"

	"github.com/dshills/krokidoc/internal/render"
	"github.com/yuin/goldmark/ast"
)

// KindDiagram is the node kind of Block.
var KindDiagram = ast.NewNodeKind("KrokiDiagram")

// Block is a rendered (or failed) diagram that replaced a fenced code block.
type Block struct {
	ast.BaseBlock

	info    blockInfo
	source  string
	Outcome render.Outcome
}

func (b *Block) Kind() ast.NodeKind { return KindDiagram }

func (b *Block) IsRaw() bool { return true }

func (b *Block) Dump(src []byte, level int) {
	kv := map[string]string{
		"Type":   b.info.Type,
		"Kind":   b.Outcome.Result.Kind.String(),
		"Target": b.Outcome.Result.Target,
	}
	if b.Outcome.Err != nil {
		kv["Error"] = fmt.Sprint(b.Outcome.Err)
	}
	ast.DumpHelper(b, src, level, kv, nil)
}
