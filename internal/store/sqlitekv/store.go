// Package sqlitekv provides a durable registry store backed by SQLite.
// Capabilities are stored as JSON values keyed by id, with a version
// column implementing the compare-and-swap contract and a rowid-ordered
// listing that preserves insertion order.
package sqlitekv

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/registry"
)

// Store is a SQLite-backed registry.Store.
type Store struct {
	db *sql.DB
}

// Open creates or opens the store at the given path. ":memory:" works for
// tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening store: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring store: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring store: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS capabilities (
		id      TEXT PRIMARY KEY,
		data    TEXT NOT NULL,
		version INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get implements registry.Store.
func (s *Store) Get(ctx context.Context, id string) (registry.Entry, error) {
	var data string
	var version int64
	err := s.db.QueryRowContext(ctx,
		"SELECT data, version FROM capabilities WHERE id = ?", id).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return registry.Entry{}, registry.ErrNotFound
	}
	if err != nil {
		return registry.Entry{}, fmt.Errorf("reading capability %q: %w", id, err)
	}

	var cap model.Capability
	if err := json.Unmarshal([]byte(data), &cap); err != nil {
		return registry.Entry{}, fmt.Errorf("decoding capability %q: %w", id, err)
	}
	return registry.Entry{Capability: cap, Version: version}, nil
}

// Put implements registry.Store. Inserts require expectedVersion 0;
// updates are conditional on the stored version, so a lost race surfaces
// as registry.ErrVersionConflict rather than a silent overwrite.
func (s *Store) Put(ctx context.Context, id string, cap model.Capability, expectedVersion int64) (int64, error) {
	data, err := json.Marshal(cap)
	if err != nil {
		return 0, fmt.Errorf("encoding capability %q: %w", id, err)
	}

	if expectedVersion == 0 {
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO capabilities (id, data, version) VALUES (?, ?, 1)", id, string(data))
		if err != nil {
			// A duplicate insert means another writer won the race.
			return 0, registry.ErrVersionConflict
		}
		return 1, nil
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE capabilities SET data = ?, version = version + 1 WHERE id = ? AND version = ?",
		string(data), id, expectedVersion)
	if err != nil {
		return 0, fmt.Errorf("updating capability %q: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("updating capability %q: %w", id, err)
	}
	if affected == 0 {
		return 0, registry.ErrVersionConflict
	}
	return expectedVersion + 1, nil
}

// List implements registry.Store, ordered by insertion (rowid).
func (s *Store) List(ctx context.Context) ([]registry.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT data, version FROM capabilities ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("listing capabilities: %w", err)
	}
	defer rows.Close()

	var out []registry.Entry
	for rows.Next() {
		var data string
		var version int64
		if err := rows.Scan(&data, &version); err != nil {
			return nil, fmt.Errorf("listing capabilities: %w", err)
		}
		var cap model.Capability
		if err := json.Unmarshal([]byte(data), &cap); err != nil {
			return nil, fmt.Errorf("decoding capability: %w", err)
		}
		out = append(out, registry.Entry{Capability: cap, Version: version})
	}
	return out, rows.Err()
}
