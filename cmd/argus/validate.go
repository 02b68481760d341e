package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/argus/pkg/catalog"
	"mercator-hq/argus/pkg/config"
)

var validateFlags struct {
	catalogFile string
	format      string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a hook catalog",
	Long: `Validate a hook catalog file for syntax and semantic errors.

The validate command parses the catalog and checks:
  - YAML syntax
  - Required hook fields (container, type, member)
  - Container name safety (no path traversal)
  - Duplicate hook detection

Examples:
  # Validate the catalog from the config file
  argus validate

  # Validate a specific catalog file
  argus validate --catalog hooks/catalog.yaml

  # JSON output for CI/CD
  argus validate --catalog catalog.yaml --format json`,
	RunE: validateCatalog,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.catalogFile, "catalog", "f", "", "catalog file to validate")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

type validateResult struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Hooks int    `json:"hooks"`
	Error string `json:"error,omitempty"`
}

func validateCatalog(cmd *cobra.Command, args []string) error {
	path := validateFlags.catalogFile
	if path == "" {
		cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		path = cfg.Catalog.Path
	}

	result := validateResult{File: path}

	cat, err := catalog.Load(path)
	if err != nil {
		result.Error = err.Error()
	} else {
		result.Valid = true
		result.Hooks = len(cat.Hooks)
	}

	if validateFlags.format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Printf("✓ %s: %d hooks\n", result.File, result.Hooks)
	} else {
		fmt.Printf("✗ %s: %s\n", result.File, result.Error)
	}

	if !result.Valid {
		return fmt.Errorf("catalog validation failed")
	}
	return nil
}
