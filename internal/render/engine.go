package render

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dshills/krokidoc/internal/cache"
	"github.com/dshills/krokidoc/internal/diagram"
	"github.com/dshills/krokidoc/internal/logging"
	"github.com/dshills/krokidoc/internal/redact"
	"github.com/dshills/krokidoc/internal/store"
	"github.com/hashicorp/go-hclog"
)

const defaultConcurrency = 4

// Options control how requests are rendered.
type Options struct {
	// Fetch stores images locally instead of referencing the server URL.
	Fetch bool
	Dirs  cache.DirHints
	// PlantUMLInclude is a file prepended to every plantuml diagram.
	PlantUMLInclude string
	// PreferPNG swaps svg for png on diagram types that support it.
	PreferPNG   bool
	Concurrency int
}

// Request is one diagram to render.
type Request struct {
	Type string
	// Format is a hint; empty means svg.
	Format string
	Text   string
}

// Kind tells how a Result should be embedded.
type Kind int

const (
	// KindReference is a remote image URL.
	KindReference Kind = iota
	// KindFile is a cached image file name.
	KindFile
	// KindText is inline text content.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindText:
		return "text"
	default:
		return "reference"
	}
}

// Result is a rendered diagram.
type Result struct {
	Diagram diagram.Diagram
	Kind    Kind
	// Target is the image URL or cached file name; empty for text.
	Target string
	// Path is the cached file location for KindFile.
	Path string
	Text string
}

// Outcome pairs a Result with the error that prevented it.
type Outcome struct {
	Result Result
	Err    error
}

// Engine renders diagrams. It is safe for concurrent use.
type Engine struct {
	fetcher cache.Fetcher
	writer  *cache.Writer
	opts    Options
	include string
	log     hclog.Logger
}

// New creates an Engine. shared may be nil. The PlantUML include file, if
// configured, is read once here.
func New(fetcher cache.Fetcher, shared store.Store, opts Options, log hclog.Logger) (*Engine, error) {
	if log == nil {
		log = logging.Discard()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	e := &Engine{
		fetcher: fetcher,
		writer:  cache.NewWriter(fetcher, shared, log.Named("cache")),
		opts:    opts,
		log:     log,
	}
	if opts.PlantUMLInclude != "" {
		data, err := os.ReadFile(opts.PlantUMLInclude)
		if err != nil {
			return nil, fmt.Errorf("reading plantuml include: %w", err)
		}
		e.include = string(data)
	}
	return e, nil
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Diagram builds the diagram a request resolves to: format defaulting and
// the PlantUML include are applied.
func (e *Engine) Diagram(req Request) (diagram.Diagram, error) {
	if strings.TrimSpace(req.Type) == "" {
		return diagram.Diagram{}, fmt.Errorf("diagram type is required")
	}
	d := diagram.New(req.Type, req.Format, req.Text)
	if e.opts.PreferPNG && d.Format == "svg" && diagram.SupportsPNG(d.Type) {
		d.Format = "png"
	}
	if d.Type == "plantuml" && e.include != "" {
		d.Text = e.include + "\n" + d.Text
	}
	return d, nil
}

// Render renders a single request.
func (e *Engine) Render(ctx context.Context, req Request) (Result, error) {
	d, err := e.Diagram(req)
	if err != nil {
		return Result{}, err
	}

	if d.IsText() {
		payload, err := e.fetcher.Fetch(ctx, d)
		if err != nil {
			return Result{}, fmt.Errorf("rendering %s diagram: %w", d.Type, err)
		}
		return Result{Diagram: d, Kind: KindText, Text: payload.String()}, nil
	}

	if e.opts.Fetch {
		entry, err := e.writer.Save(ctx, d, e.opts.Dirs)
		if err != nil {
			return Result{}, fmt.Errorf("rendering %s diagram: %w", d.Type, err)
		}
		return Result{Diagram: d, Kind: KindFile, Target: entry.FileName, Path: entry.Path}, nil
	}

	uri, err := d.URI(e.fetcher.ServerURL())
	if err != nil {
		return Result{}, err
	}
	return Result{Diagram: d, Kind: KindReference, Target: uri}, nil
}

// RenderAll renders every request in parallel and returns outcomes in
// request order.
func (e *Engine) RenderAll(ctx context.Context, reqs []Request) []Outcome {
	outcomes := make([]Outcome, len(reqs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.opts.Concurrency)

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			res, err := e.Render(ctx, req)
			if err != nil {
				e.log.Warn("diagram failed", "index", i, "type", req.Type, "error", redact.Secrets(err.Error()))
			}
			outcomes[i] = Outcome{Result: res, Err: err}
		}(i, req)
	}
	wg.Wait()
	return outcomes
}

// Failed counts the outcomes that carry an error.
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}
