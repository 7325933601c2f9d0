package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/krokidoc/internal/markdown"
	"github.com/dshills/krokidoc/internal/output"
	"github.com/dshills/krokidoc/internal/render"
	"github.com/dshills/krokidoc/internal/source"
	"github.com/spf13/cobra"
)

var (
	flagOut    string
	flagOutput string
)

var renderCmd = &cobra.Command{
	Use:   "render <doc.md>",
	Short: "Convert a Markdown document, rendering every diagram block",
	Long: `Convert a Markdown document to HTML. Fenced code blocks whose language is a
Kroki diagram type (plantuml, graphviz, mermaid, ...) are rendered through the
Kroki server. The info string may carry a format and attributes:

    ` + "```plantuml png alt=\"Login flow\"" + `

Use "-" to read the document from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docPath := args[0]
		baseDir := "."
		if docPath != "-" && !source.IsRemote(docPath) {
			baseDir = filepath.Dir(docPath)
		}

		s, err := newSession(baseDir, func(opts *render.Options) {
			if flagOut != "" {
				opts.Dirs.ToDir = filepath.Dir(flagOut)
			}
		})
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		src, err := source.Read(ctx, docPath, os.Stdin, s.transport.Client())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		conv := markdown.NewConverter(s.engine, s.cfg.Images.Dir)
		doc, err := conv.Convert(ctx, []byte(src))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if err := output.WriteDocument(doc, s.cfg.Format, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if failed := doc.Failed(); failed > 0 {
			fmt.Fprintf(os.Stderr, "%d of %d diagrams failed\n", failed, len(doc.Diagrams))
			exitCode = ExitDiagramFailed
		}
		return nil
	},
}

func init() {
	addEngineFlags(renderCmd)
	renderCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	renderCmd.Flags().StringVar(&flagOutput, "output", "", "Output format (html, fragment, json, text)")
}
