package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"example.com/launchpad-notes/internal/db"
	"example.com/launchpad-notes/internal/logging"
	"example.com/launchpad-notes/internal/notes"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the notes table if it does not exist, then exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig()
		log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

		dbConn, err := db.Open(cmd.Context(), cfg.DatabaseURL, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer dbConn.SQL.Close()

		if err := notes.Migrate(cmd.Context(), dbConn.SQL, dbConn.Dialect); err != nil {
			return fmt.Errorf("initialize notes schema: %w", err)
		}
		log.Info().Str("dialect", string(dbConn.Dialect)).Msg("notes schema ready")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
