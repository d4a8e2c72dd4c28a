package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/flowmaker/pkg/cli"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
	outputFmt string
)

// skipConfigAnnotation marks commands that run without loading config.
const skipConfigAnnotation = "flowmaker/skip-config"

var rootCmd = &cobra.Command{
	Use:   "flowmaker",
	Short: "Flowmaker - pseudocode to flowchart compiler",
	Long: `Flowmaker compiles indentation-structured pseudocode into Mermaid
flowchart text.

It provides:
  - A compiler for if/else, while and for blocks with line-accurate errors
  - A tree_diagram mode for indented hierarchies
  - An HTTP API with diagram storage and share links
  - A file watcher that recompiles sources on change`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadApp,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (built-in defaults when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override telemetry.logging.level")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override telemetry.logging.format")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "output format (text, json)")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
