package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "orison",
	Short: "Orison - model orchestration core for LLM inference",
	Long: `Orison routes LLM requests to the best-fit model: it classifies the
task, scores and selects candidates against live capability and cost
data, executes with bounded retries, and falls back across providers
on transient failure. It also runs multi-model consensus queries and
multi-step pipelines with checkpoint/resume.

For more information, visit: https://github.com/mercator-hq/orison`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
