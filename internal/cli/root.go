package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes
const (
	ExitSuccess       = 0
	ExitDiagramFailed = 1
	ExitUsageError    = 2
	ExitRuntimeError  = 4
)

var rootCmd = &cobra.Command{
	Use:   "krokidoc",
	Short: "Render diagrams in documents with Kroki",
	Long:  "krokidoc renders PlantUML, Graphviz, Mermaid and other diagram blocks through a Kroki server and emits HTML with deterministic exit codes.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(diagramCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print krokidoc version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "krokidoc version %s\n", version)
	},
}
