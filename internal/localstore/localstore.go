// Package localstore persists client-local state that has no server
// mirror: the session token, saved filter presets, and recent search
// terms. Values are serialized JSON under well-known keys in a small
// sqlite database inside the data directory. There is no expiry and no
// cross-device sync.
package localstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Well-known keys.
const (
	// KeySessionToken holds the bearer token saved by login.
	KeySessionToken = "bugtrack_session_token"

	// KeySavedFilters holds the list of saved filter presets.
	KeySavedFilters = "bugtrack_saved_filters"

	// KeyRecentSearches holds the recent search terms, newest first.
	KeyRecentSearches = "bugtrack_recent_searches"
)

// ErrNotFound is returned by Get when no value exists under the key.
var ErrNotFound = errors.New("localstore: key not found")

// Store is a key/value store over a local sqlite database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the local store inside dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dir, "local.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS kv (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate localstore: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get unmarshals the JSON stored under key into out. Returns
// ErrNotFound when the key has never been written.
func (s *Store) Get(key string, out any) error {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Put serializes v as JSON and stores it under key, replacing any
// previous value.
func (s *Store) Put(key string, v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.db.Exec(`
INSERT INTO kv (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value
`, key, string(encoded))
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes the value under key. Deleting an absent key is not
// an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
