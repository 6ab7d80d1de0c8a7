package notes

import (
	"context"
	"database/sql"
	"fmt"

	"example.com/launchpad-notes/internal/db"
)

// The SQLite table matches what the launchpad server has always created, so existing notes.db files open unchanged.
const (
	sqliteSchema = `
		CREATE TABLE IF NOT EXISTS notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT,
			content TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`

	postgresSchema = `
		CREATE TABLE IF NOT EXISTS notes (
			id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
			title TEXT,
			content TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
)

// Migrate creates the notes table if it is missing. It never drops or alters existing data.
func Migrate(ctx context.Context, conn *sql.DB, dialect db.Dialect) error {
	var ddl string
	switch dialect {
	case db.SQLite:
		ddl = sqliteSchema
	case db.Postgres:
		ddl = postgresSchema
	default:
		return fmt.Errorf("migrate: unknown dialect %q", dialect)
	}
	if _, err := conn.ExecContext(ctx, ddl); err != nil {
		return storageErr("migrate", err)
	}
	return nil
}
