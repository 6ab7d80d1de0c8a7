package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Dialect names the SQL flavour spoken by the opened database.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

var ErrUnsupportedScheme = errors.New("unsupported database url scheme")

type DB struct {
	SQL     *sql.DB
	Dialect Dialect
}

func Open(ctx context.Context, databaseURL string, maxOpen, maxIdle int, maxLifetime, maxIdleTime time.Duration) (*DB, error) {
	driver, dsn, dialect, err := Resolve(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)
	db.SetConnMaxIdleTime(maxIdleTime)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	return &DB{SQL: db, Dialect: dialect}, nil
}

// Resolve maps a DATABASE_URL to a database/sql driver name and DSN.
// postgres:// and postgresql:// go to pgx; sqlite://, file: and bare paths go to SQLite.
func Resolve(databaseURL string) (driver, dsn string, dialect Dialect, err error) {
	u := strings.TrimSpace(databaseURL)
	switch {
	case u == "":
		return "", "", "", errors.New("database url is empty")
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return "pgx", u, Postgres, nil
	case strings.HasPrefix(u, "sqlite://"):
		return "sqlite3", sqliteDSN("file:" + strings.TrimPrefix(u, "sqlite://")), SQLite, nil
	case strings.HasPrefix(u, "file:"):
		return "sqlite3", sqliteDSN(u), SQLite, nil
	case u == ":memory:":
		return "sqlite3", u, SQLite, nil
	case strings.Contains(u, "://"):
		return "", "", "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u[:strings.Index(u, "://")])
	default:
		return "sqlite3", sqliteDSN("file:" + u), SQLite, nil
	}
}

// sqliteDSN adds a busy timeout unless the caller already set pragmas.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") || strings.Contains(dsn, "mode=memory") || strings.Contains(dsn, "vfs=memdb") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)"
}

// Rebind rewrites $n placeholders into the form the dialect expects.
// SQLite parses $1 as a named parameter and numbers it by first appearance,
// so "SELECT $2 || $1" would bind the first argument to $2. ?NNN keeps the
// Postgres meaning of each position.
func Rebind(d Dialect, query string) string {
	if d != SQLite {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
