package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dshills/krokidoc/internal/diagram"
	"github.com/dshills/krokidoc/internal/redact"
	"github.com/spf13/cobra"
)

const doctorSource = "digraph G { krokidoc -> kroki }"

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the Kroki server renders diagrams",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(".", nil)
		if err != nil {
			return err
		}
		defer s.Close()

		server := redact.URL(s.transport.ServerURL())
		fmt.Fprintf(os.Stdout, "Checking %s...\n", server)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		d := diagram.New("graphviz", "svg", doctorSource)
		method, _, err := s.transport.Decide(d)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		payload, err := s.transport.Fetch(ctx, d)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %s\n", redact.Secrets(err.Error()))
			exitCode = ExitRuntimeError
			return nil
		}
		if !strings.Contains(string(payload.Data), "<svg") {
			fmt.Fprintf(os.Stderr, "FAIL: %s answered without an SVG document\n", server)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(os.Stdout, "OK: %s rendered a graphviz diagram via %s (%d bytes)\n", server, method, len(payload.Data))

		if s.shared != nil {
			if err := s.shared.Health(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "FAIL: shared store %s: %v\n", s.cfg.Store.Addr, err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintf(os.Stdout, "OK: shared store %s is responding\n", s.cfg.Store.Addr)
		}
		return nil
	},
}

func init() {
	addEngineFlags(doctorCmd)
}
