package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quantum",
	Short: "Quantum Stock - daily bar ingestion and screening pipelines",
	Long: `Quantum Stock Unified CLI

Incremental daily-bar ingestion from Tushare Pro and a date-aware
screening engine over the stored history.

Usage:
  go run ./cmd/quantum [command]

Examples:
  go run ./cmd/quantum ingest --start 20250101 --end 20250630
  go run ./cmd/quantum screen --start 20250101 --end 20250630 --note "H1 sweep"
  go run ./cmd/quantum scheduler start
  go run ./cmd/quantum status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
