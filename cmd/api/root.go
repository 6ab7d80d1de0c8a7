package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"example.com/launchpad-notes/internal/config"
)

var (
	logLevel string

	// version is set at build time with -ldflags "-X main.version=...".
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "notes-api",
	Short: "Notes service for the launchpad notepad",
	Long: `notes-api stores the launchpad notepad's notes in SQLite or Postgres
and serves them over a small JSON API under /api/notes.

Running it without a subcommand is the same as "notes-api serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() config.Config {
	cfg := config.Load()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg
}
