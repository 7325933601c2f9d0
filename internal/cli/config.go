package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dshills/krokidoc/internal/config"
	"github.com/dshills/krokidoc/internal/logging"
	"github.com/dshills/krokidoc/internal/redact"
	"github.com/dshills/krokidoc/internal/transport"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage krokidoc configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "Config file already exists at %s\n", path)
			return nil
		}

		cfg := config.Default()
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Fprintf(os.Stdout, "Config file created at %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile()
		if err != nil {
			// If no config file, start from defaults
			cfg = config.Default()
		}

		key, value := args[0], args[1]
		if key == "httpMethod" {
			value = normalizeMethod(value, cmd.ErrOrStderr())
		}
		if err := config.SetField(&cfg, key, value); err != nil {
			return err
		}

		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Fprintf(os.Stdout, "Set %s = %s\n", key, value)
		return nil
	},
}

// normalizeMethod returns the canonical spelling of an HTTP method setting.
// Unknown values are stored as adaptive, which is what a render would fall
// back to anyway, and the fallback is reported on w.
func normalizeMethod(value string, w io.Writer) string {
	return transport.ResolveMethod(value, logging.New("warn", w)).String()
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}

		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			fmt.Fprintf(os.Stdout, "Config file: %s (not found, using defaults)\n", path)
		} else {
			fmt.Fprintf(os.Stdout, "Config file: %s\n", path)
		}

		// Report what a render would actually use after defaults and fallbacks.
		eff := transport.New(cfg.TransportConfig(logging.New("warn", cmd.ErrOrStderr())), nil, nil).Config()
		fmt.Fprintln(os.Stdout, "Transport:")
		fmt.Fprintf(os.Stdout, "  server:       %s\n", redact.URL(eff.ServerURL))
		fmt.Fprintf(os.Stdout, "  method:       %s\n", eff.Method)
		fmt.Fprintf(os.Stdout, "  maxUriLength: %d\n", eff.MaxURILength)
		fmt.Fprintf(os.Stdout, "  timeout:      %s\n", eff.Timeout)
		fmt.Fprintf(os.Stdout, "  retries:      %d\n", eff.Retries)

		data, err := json.MarshalIndent(cfg.Redacted(), "", "  ")
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
}
