// Package main provides the entry point for the dropwatch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dropwatch",
	Short: "Collectible drop monitor",
	Long: `dropwatch watches retailer listing pages for collectible drops, confirms candidates on their product pages, and alerts on new listings, restocks, price moves, exclusives, and low limited-edition counts.

Each invocation of 'run' performs one full pass; schedule it externally (cron, CI) every few minutes.`,
	SilenceUsage: true,
}

var (
	configPath  string
	statePath   string
	databaseURL string
	verbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to watch config JSON (built-in targets and keywords when omitted)")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "State file path (defaults to DROPWATCH_STATE or state.json)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL for state storage (defaults to DATABASE_URL env var)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed progress information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
