package notes

import (
	"context"
	"database/sql"
	"errors"

	"example.com/launchpad-notes/internal/db"
)

const noteColumns = `id, COALESCE(title, ''), COALESCE(content, ''), created_at`

// Repository is the single gate to the notes table. It holds the one *sql.DB
// handed to it at startup and never opens connections of its own.
type Repository struct {
	db      *sql.DB
	dialect db.Dialect

	stmtGet    *sql.Stmt
	stmtUpdate *sql.Stmt
	stmtDelete *sql.Stmt
}

// NewRepository ensures the schema exists and prepares the per-id statements.
func NewRepository(ctx context.Context, conn *sql.DB, dialect db.Dialect) (*Repository, error) {
	if err := Migrate(ctx, conn, dialect); err != nil {
		return nil, err
	}

	r := &Repository{db: conn, dialect: dialect}

	var err error
	r.stmtGet, err = r.prepare(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE id = $1
	`)
	if err != nil {
		return nil, err
	}

	r.stmtUpdate, err = r.prepare(ctx, `
		UPDATE notes
		SET title = $1, content = $2
		WHERE id = $3
		RETURNING `+noteColumns)
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	r.stmtDelete, err = r.prepare(ctx, `DELETE FROM notes WHERE id = $1`)
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	return r, nil
}

func (r *Repository) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	s, err := r.db.PrepareContext(ctx, db.Rebind(r.dialect, query))
	return s, storageErr("prepare", err)
}

func (r *Repository) Close() error {
	for _, s := range []*sql.Stmt{r.stmtGet, r.stmtUpdate, r.stmtDelete} {
		if s != nil {
			_ = s.Close()
		}
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, title, content string) (Note, error) {
	var n Note
	err := r.db.QueryRowContext(ctx, db.Rebind(r.dialect, `
		INSERT INTO notes (title, content) VALUES ($1, $2)
		RETURNING `+noteColumns), title, content).
		Scan(&n.ID, &n.Title, &n.Content, scanTime{&n.CreatedAt})
	if err != nil {
		return Note{}, storageErr("create", err)
	}
	return n, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (Note, error) {
	var n Note
	err := r.stmtGet.QueryRowContext(ctx, id).Scan(&n.ID, &n.Title, &n.Content, scanTime{&n.CreatedAt})
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	if err != nil {
		return Note{}, storageErr("get", err)
	}
	return n, nil
}

// Update replaces title and content; id and created_at are left untouched.
func (r *Repository) Update(ctx context.Context, id int64, title, content string) (Note, error) {
	var n Note
	err := r.stmtUpdate.QueryRowContext(ctx, title, content, id).Scan(&n.ID, &n.Title, &n.Content, scanTime{&n.CreatedAt})
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	if err != nil {
		return Note{}, storageErr("update", err)
	}
	return n, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.stmtDelete.ExecContext(ctx, id)
	if err != nil {
		return storageErr("delete", err)
	}
	a, err := res.RowsAffected()
	if err != nil {
		return storageErr("delete", err)
	}
	if a == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every note in creation order. An empty table yields an empty, non-nil slice.
func (r *Repository) List(ctx context.Context) ([]Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, storageErr("list", err)
	}
	defer rows.Close()

	notes, err := scanNotes(rows)
	if err != nil {
		return nil, storageErr("list", err)
	}
	return notes, nil
}

func scanNotes(rows *sql.Rows) ([]Note, error) {
	out := make([]Note, 0, 32)
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, scanTime{&n.CreatedAt}); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
