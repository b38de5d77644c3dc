// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a local SQLite log of conversion attempts.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Operations recorded in the log.
const (
	OpConvert = "convert"
	OpMerge   = "merge"
)

const defaultLimit = 20

// Record is one conversion attempt.
type Record struct {
	ID          int64     `json:"id"`
	At          time.Time `json:"at"`
	Operation   string    `json:"operation"`
	Sources     []string  `json:"sources"`
	Destination string    `json:"destination"`
	Succeeded   bool      `json:"succeeded"`
	Diagnostic  string    `json:"diagnostic,omitempty"`
}

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			operation TEXT NOT NULL,
			sources TEXT NOT NULL,
			destination TEXT NOT NULL,
			succeeded INTEGER NOT NULL,
			diagnostic TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_at ON conversions(at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends rec to the log. A zero At is replaced with the current time.
func (s *Store) Record(ctx context.Context, rec Record) error {
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	sources, err := json.Marshal(rec.Sources)
	if err != nil {
		return fmt.Errorf("encoding sources: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversions (at, operation, sources, destination, succeeded, diagnostic)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.At.UTC().Format(time.RFC3339Nano), rec.Operation, string(sources),
		rec.Destination, rec.Succeeded, rec.Diagnostic,
	)
	if err != nil {
		return fmt.Errorf("inserting history record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first. A non-positive limit
// uses the default of 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, operation, sources, destination, succeeded, COALESCE(diagnostic, '')
		 FROM conversions ORDER BY at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec     Record
			at      string
			sources string
		)
		if err := rows.Scan(&rec.ID, &at, &rec.Operation, &sources, &rec.Destination, &rec.Succeeded, &rec.Diagnostic); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if rec.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parsing timestamp %q: %w", at, err)
		}
		if err := json.Unmarshal([]byte(sources), &rec.Sources); err != nil {
			return nil, fmt.Errorf("decoding sources: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
