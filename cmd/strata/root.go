package main

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Reconstruct document structure from layout-analyzer page output",
	Long: `Strata turns positioned page elements (text blocks, lines, drawing
rules) back into structured documents.

The pipeline includes:
  - Repeated header and footer removal
  - Ruling-based table region detection
  - Multi-column line reconciliation and reading order
  - Title hierarchy inference from font prominence
  - Split-paragraph reassembly`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./strata.yaml or ~/.strata/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)
}
