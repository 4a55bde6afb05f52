// Package store is scout's local state: UI preferences and saved searches,
// kept in a small SQLite database under the user's state dir. Nothing in
// here is portal data; the backend stays the single source of truth for
// connections.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// PrefShowStats is the fixed key for the "show stats" toggle. Read once at
// startup, written on every toggle.
const PrefShowStats = "connections.show_stats"

const schemaVersion = 1

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the state database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS prefs (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS saved_searches (
			name TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta(key, value) VALUES('schema_version', ?)
		 ON CONFLICT(key) DO NOTHING`, fmt.Sprint(schemaVersion))
	return err
}

// Bool reads a boolean preference, returning def when the key was never set.
func (s *Store) Bool(ctx context.Context, key string, def bool) (bool, error) {
	var val string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return val == "1", nil
}

// SetBool writes a boolean preference.
func (s *Store) SetBool(ctx context.Context, key string, v bool) error {
	val := "0"
	if v {
		val = "1"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prefs(key, value, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, val, time.Now().UTC().Format(time.RFC3339))
	return err
}

// SavedSearch is a named, encoded list query (the codec's output), so a
// saved search round-trips through the same defensive decode as a deep link.
type SavedSearch struct {
	Name      string
	Query     string
	CreatedAt time.Time
}

// SaveSearch upserts a named search.
func (s *Store) SaveSearch(ctx context.Context, name, encodedQuery string) error {
	if name == "" {
		return errors.New("saved search needs a name")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_searches(name, query, created_at) VALUES(?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET query = excluded.query`,
		name, encodedQuery, time.Now().UTC().Format(time.RFC3339))
	return err
}

// SavedSearches lists saved searches, newest first.
func (s *Store) SavedSearches(ctx context.Context) ([]SavedSearch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, query, created_at FROM saved_searches ORDER BY created_at DESC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SavedSearch
	for rows.Next() {
		var ss SavedSearch
		var created string
		if err := rows.Scan(&ss.Name, &ss.Query, &created); err != nil {
			return nil, err
		}
		ss.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, ss)
	}
	return out, rows.Err()
}

// DeleteSearch removes a saved search. Deleting an unknown name is not an
// error.
func (s *Store) DeleteSearch(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM saved_searches WHERE name = ?`, name)
	return err
}

// DefaultPath returns the state db location under the user state/config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "scout", "state.sqlite"), nil
}
