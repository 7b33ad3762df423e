// Package store persists the caller-owned pieces around the core pipeline:
// person color overrides, opaque settings blobs, and cached ICS imports.
// The core never touches this package; everything here is read before a run
// and written after user edits.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const DriverName = "sqlite3"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

type Store struct {
	db *sqlx.DB
}

// Open opens (creating if necessary) the SQLite database at path and runs
// migrations.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: running migrations: %w", err)
	}
	return s, nil
}

// NewWithDB wraps an existing connection; used by tests with :memory:.
func NewWithDB(db *sql.DB) (*Store, error) {
	s := &Store{db: sqlx.NewDb(db, DriverName)}
	if err := s.runMigrations(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetColorAssignment stores (or replaces) a person-name to hex color
// override.
func (s *Store) SetColorAssignment(ctx context.Context, personName, color string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO color_assignments (person_name, color, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(person_name) DO UPDATE SET color=excluded.color, updated_at=excluded.updated_at;
	`, personName, color, time.Now().UTC().Format(time.RFC3339))
	return err
}

// DeleteColorAssignment removes a person's override; missing rows are not an
// error.
func (s *Store) DeleteColorAssignment(ctx context.Context, personName string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM color_assignments WHERE person_name = ?`, personName)
	return err
}

// ColorAssignments loads the full override map (person name -> hex color).
func (s *Store) ColorAssignments(ctx context.Context) (map[string]string, error) {
	var rows []colorAssignment
	err := s.db.SelectContext(ctx, &rows, `
		SELECT person_name, color FROM color_assignments`)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.PersonName] = row.Color
	}
	return out, nil
}

// SetSetting stores an opaque settings value under key.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value;
	`, key, value)
	return err
}

// Setting returns the value stored under key, or ErrNotFound.
func (s *Store) Setting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SaveImport caches a raw ICS body for a source so the calendar can be
// rebuilt without refetching. Returns the new import id.
func (s *Store) SaveImport(ctx context.Context, sourceID string, body []byte) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO imports (id, source_id, body, imported_at) VALUES (?, ?, ?, ?);
	`, id, sourceID, string(body), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return id, nil
}

// LatestImport returns the most recent cached ICS body for a source, or
// ErrNotFound.
func (s *Store) LatestImport(ctx context.Context, sourceID string) (Import, error) {
	var row importRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, source_id, body, imported_at
		FROM imports
		WHERE source_id = ?
		ORDER BY imported_at DESC
		LIMIT 1`, sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return Import{}, ErrNotFound
	}
	if err != nil {
		return Import{}, err
	}
	return row.convert(), nil
}

// PruneImports keeps only the most recent keep imports per source.
func (s *Store) PruneImports(ctx context.Context, sourceID string, keep int) error {
	if keep < 1 {
		keep = 1
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM imports
		WHERE source_id = ?
			AND id NOT IN (
				SELECT id FROM imports
				WHERE source_id = ?
				ORDER BY imported_at DESC
				LIMIT ?
			)`, sourceID, sourceID, keep)
	return err
}
