package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dshills/krokidoc/internal/cache"
	"github.com/dshills/krokidoc/internal/config"
	"github.com/spf13/cobra"
)

var flagCacheDir string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage fetched diagram images",
}

// cacheDir returns --dir, or the images directory the render command would
// write to from the current directory.
func cacheDir() (string, error) {
	if flagCacheDir != "" {
		return flagCacheDir, nil
	}
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return "", err
	}
	return cfg.RenderOptions(flagOutDir, ".").Dirs.Resolve(), nil
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all fetched diagram images",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := cacheDir()
		if err != nil {
			return err
		}
		n, err := cache.Clear(dir)
		if err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Removed %d diagram(s) from %s.\n", n, dir)
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := cacheDir()
		if err != nil {
			return err
		}
		stats, err := cache.GetStats(dir)
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&flagCacheDir, "dir", "", "Images directory (default: resolved from config)")
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
