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
	Use:   "argus",
	Short: "Argus - runtime AI SDK usage instrumentation agent",
	Long: `Argus is a runtime instrumentation agent that observes AI SDK calls and
extracts usage telemetry without compile-time dependencies on the SDKs.

It provides:
  - Runtime member location across containers, with caching
  - Caller-context filtering against mocking and tracing frameworks
  - Result normalization for async, streaming, and wrapper shapes
  - Provider/model/token extraction into durable telemetry records`,
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
}
