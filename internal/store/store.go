// Package store persists the planning data in a single sqlite file: people,
// projects, assignments with per-week hours, and an append-only change log
// that feeds the notification stream.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned for reads of absent entities.
var ErrNotFound = errors.New("not found")

type Store struct {
	Dir string
}

func (s Store) sqlitePath() string {
	return filepath.Join(filepath.Clean(s.Dir), "staffgrid.sqlite")
}

// Ensure creates the store directory.
func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("empty store dir")
	}
	return os.MkdirAll(filepath.Clean(s.Dir), 0o755)
}

func (s Store) Open(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// Pragmas for multi-process local usage.
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS people (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			department TEXT NOT NULL DEFAULT '',
			weekly_capacity REAL NOT NULL DEFAULT 40
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			archived INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS assignments (
			id TEXT PRIMARY KEY,
			person_id TEXT NOT NULL REFERENCES people(id),
			project_id TEXT NOT NULL REFERENCES projects(id),
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_person ON assignments(person_id);`,
		`CREATE TABLE IF NOT EXISTS assignment_hours (
			assignment_id TEXT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
			week_key TEXT NOT NULL,
			hours REAL NOT NULL,
			PRIMARY KEY(assignment_id, week_key)
		);`,
		`CREATE TABLE IF NOT EXISTS changes (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			assignment_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			payload_json TEXT,
			affected_json TEXT NOT NULL,
			server_ts_unixms INTEGER NOT NULL,
			origin TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_changes_assignment ON changes(assignment_id);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// NewID mints an entity id with a type prefix, e.g. "asn-7f3a9c12e0d4".
func NewID(prefix string) string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing is unrecoverable for id minting.
		panic(fmt.Sprintf("store: rand: %v", err))
	}
	return prefix + "-" + hex.EncodeToString(b[:])
}
