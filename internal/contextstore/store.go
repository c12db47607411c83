// Package contextstore persists named customization contexts (a template
// source plus the options used to customize it) in SQLite.
package contextstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a context name does not exist.
var ErrNotFound = errors.New("context not found")

// Context is a saved customization.
type Context struct {
	Name           string    `json:"name"`
	Source         string    `json:"source"`
	Labels         []string  `json:"labels"`
	DropTitles     []string  `json:"drop_titles"`
	IncludeAnchors bool      `json:"include_anchors"`
	Language       string    `json:"language,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Store is a SQLite-backed context registry.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS contexts (
		name TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		labels TEXT NOT NULL DEFAULT '[]',
		drop_titles TEXT NOT NULL DEFAULT '[]',
		include_anchors INTEGER NOT NULL DEFAULT 0,
		language TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	)`)
	return err
}

// Save inserts or replaces a context and stamps UpdatedAt.
func (s *Store) Save(ctx context.Context, c Context) (Context, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return Context{}, errors.New("context name is required")
	}
	if strings.TrimSpace(c.Source) == "" {
		return Context{}, errors.New("context source is required")
	}
	if c.Labels == nil {
		c.Labels = []string{}
	}
	if c.DropTitles == nil {
		c.DropTitles = []string{}
	}
	labels, err := json.Marshal(c.Labels)
	if err != nil {
		return Context{}, err
	}
	drops, err := json.Marshal(c.DropTitles)
	if err != nil {
		return Context{}, err
	}
	c.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contexts (name, source, labels, drop_titles, include_anchors, language, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source=excluded.source,
			labels=excluded.labels,
			drop_titles=excluded.drop_titles,
			include_anchors=excluded.include_anchors,
			language=excluded.language,
			updated_at=excluded.updated_at
	`, c.Name, c.Source, string(labels), string(drops), c.IncludeAnchors, c.Language, c.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return Context{}, fmt.Errorf("save context %s: %w", c.Name, err)
	}
	return c, nil
}

const selectColumns = `SELECT name, source, labels, drop_titles, include_anchors, language, updated_at FROM contexts`

type scanner interface {
	Scan(dest ...any) error
}

func scanContext(row scanner) (Context, error) {
	var (
		c             Context
		labels, drops string
		updated       string
	)
	if err := row.Scan(&c.Name, &c.Source, &labels, &drops, &c.IncludeAnchors, &c.Language, &updated); err != nil {
		return Context{}, err
	}
	if err := json.Unmarshal([]byte(labels), &c.Labels); err != nil {
		return Context{}, fmt.Errorf("decode labels of %s: %w", c.Name, err)
	}
	if err := json.Unmarshal([]byte(drops), &c.DropTitles); err != nil {
		return Context{}, fmt.Errorf("decode drop titles of %s: %w", c.Name, err)
	}
	t, err := time.Parse(time.RFC3339, updated)
	if err != nil {
		return Context{}, fmt.Errorf("decode updated_at of %s: %w", c.Name, err)
	}
	c.UpdatedAt = t
	return c, nil
}

// Get returns the named context or ErrNotFound.
func (s *Store) Get(ctx context.Context, name string) (Context, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE name = ?`, strings.TrimSpace(name))
	c, err := scanContext(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Context{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c, err
}

// List returns every context ordered by name.
func (s *Store) List(ctx context.Context) ([]Context, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Context{}
	for rows.Next() {
		c, err := scanContext(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes the named context or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contexts WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}
