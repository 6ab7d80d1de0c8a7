package notes

import (
	"database/sql"
	"fmt"
	"time"
)

type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Both fields are optional; absent or null values are stored as empty strings.
type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateNoteRequest replaces title and content wholesale.
type UpdateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// sqliteTimeLayouts covers CURRENT_TIMESTAMP and the RFC3339 forms a client library may have written.
var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
}

// scanTime accepts created_at as pgx returns it (time.Time) and as SQLite stores it (text).
type scanTime struct {
	t *time.Time
}

func (s scanTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*s.t = v.UTC()
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	case int64:
		*s.t = time.Unix(v, 0).UTC()
		return nil
	case nil:
		*s.t = time.Time{}
		return nil
	default:
		return fmt.Errorf("created_at: unsupported type %T", src)
	}
}

func (s scanTime) parse(v string) error {
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*s.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("created_at: cannot parse %q", v)
}

var _ sql.Scanner = scanTime{}
