package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/krokidoc/internal/diagram"
	"github.com/dshills/krokidoc/internal/render"
	"github.com/dshills/krokidoc/internal/source"
	"github.com/spf13/cobra"
)

var (
	flagDiagramFormat string
	flagDiagramOut    string
	flagURLOnly       bool
)

var diagramCmd = &cobra.Command{
	Use:   "diagram <type> [source]",
	Short: "Render a single diagram",
	Long: `Render one diagram read from a file, an http(s) URL or stdin.

Without --out the result is printed: the image URL in reference mode, the
cached file path with --fetch, or the content itself for txt/atxt/utxt.
With --out the rendered bytes are written to the given file.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := ""
		if len(args) == 2 {
			target = args[1]
		}
		baseDir := "."
		if target != "" && target != "-" && !source.IsRemote(target) {
			baseDir = filepath.Dir(target)
		}

		s, err := newSession(baseDir, nil)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		text, err := source.Read(ctx, target, os.Stdin, s.transport.Client())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		req := render.Request{Type: args[0], Format: flagDiagramFormat, Text: text}
		if !diagram.IsKnownType(req.Type) {
			s.log.Warn("unknown diagram type, sending it anyway", "type", req.Type)
		}

		d, err := s.engine.Diagram(req)
		if err != nil {
			return err
		}

		switch {
		case flagURLOnly:
			uri, err := d.URI(s.transport.ServerURL())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintln(os.Stdout, uri)
		case flagDiagramOut != "":
			payload, err := s.transport.Fetch(ctx, d)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitDiagramFailed
				return nil
			}
			if err := os.WriteFile(flagDiagramOut, payload.Data, 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes)\n", flagDiagramOut, len(payload.Data))
		default:
			res, err := s.engine.Render(ctx, req)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitDiagramFailed
				return nil
			}
			switch res.Kind {
			case render.KindText:
				fmt.Fprint(os.Stdout, res.Text)
			case render.KindFile:
				fmt.Fprintln(os.Stdout, res.Path)
			default:
				fmt.Fprintln(os.Stdout, res.Target)
			}
		}
		return nil
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode [source]",
	Short: "Print the encoded form of a diagram source",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := ""
		if len(args) == 1 {
			target = args[0]
		}
		text, err := source.Read(context.Background(), target, os.Stdin, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		token, err := diagram.Encode(text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintln(os.Stdout, token)
		return nil
	},
}

func init() {
	addEngineFlags(diagramCmd)
	diagramCmd.Flags().StringVar(&flagDiagramFormat, "format", "", "Output format (svg, png, pdf, txt, ...; default svg)")
	diagramCmd.Flags().StringVar(&flagDiagramOut, "out", "", "Write the rendered diagram to this file")
	diagramCmd.Flags().BoolVar(&flagURLOnly, "url", false, "Print the GET URL without contacting the server")
}
