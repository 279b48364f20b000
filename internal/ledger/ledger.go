// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records which source documents have been converted, keyed
// by the MD5 of their content, so unchanged files are skipped on later runs.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "fontdown.db"

// ErrNotFound is returned by Get when no entry exists for a hash.
var ErrNotFound = errors.New("ledger entry not found")

// Entry is one converted document.
type Entry struct {
	Hash         string    `json:"hash" yaml:"hash"`
	Path         string    `json:"path" yaml:"path"`
	MarkdownPath string    `json:"markdown_path" yaml:"markdown_path"`
	Headings     int       `json:"headings" yaml:"headings"`
	RunID        string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	ProcessedAt  time.Time `json:"processed_at" yaml:"processed_at"`
}

// Run is one batch invocation.
type Run struct {
	ID        string
	StartedAt time.Time
}

// Counts summarises a finished run.
type Counts struct {
	Converted int
	Skipped   int
	Failed    int
}

// Ledger manages the SQLite database at <stateDir>/fontdown.db.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database under stateDir and creates the
// schema if it does not exist.
func Open(stateDir string) (*Ledger, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := filepath.Join(stateDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			converted INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			hash TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			markdown_path TEXT,
			headings INTEGER NOT NULL DEFAULT 0,
			run_id TEXT REFERENCES runs(id),
			processed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun records the start of a batch and returns its identifier.
func (l *Ledger) BeginRun(ctx context.Context) (Run, error) {
	run := Run{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		run.ID, run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final counts of a batch.
func (l *Ledger) FinishRun(ctx context.Context, run Run, c Counts) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, converted = ?, skipped = ?, failed = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), c.Converted, c.Skipped, c.Failed, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", run.ID, err)
	}
	return nil
}

// Seen reports whether a document with this hash has been converted.
func (l *Ledger) Seen(ctx context.Context, hash string) (bool, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT count(*) FROM documents WHERE hash = ?`, hash,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking hash %s: %w", hash, err)
	}
	return n > 0, nil
}

// Record inserts or replaces the entry for e.Hash. A zero ProcessedAt is
// set to the current time.
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = time.Now().UTC()
	}
	var runID any
	if e.RunID != "" {
		runID = e.RunID
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO documents (hash, path, markdown_path, headings, run_id, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET
			path=excluded.path, markdown_path=excluded.markdown_path,
			headings=excluded.headings, run_id=excluded.run_id,
			processed_at=excluded.processed_at`,
		e.Hash, e.Path, e.MarkdownPath, e.Headings, runID, e.ProcessedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", e.Path, err)
	}
	return nil
}

// Get returns the entry for hash or ErrNotFound.
func (l *Ledger) Get(ctx context.Context, hash string) (Entry, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT hash, path, markdown_path, headings, run_id, processed_at
		 FROM documents WHERE hash = ?`, hash)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("reading entry %s: %w", hash, err)
	}
	return e, nil
}

// List returns all entries, most recently processed first.
func (l *Ledger) List(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT hash, path, markdown_path, headings, run_id, processed_at
		 FROM documents ORDER BY processed_at DESC, path`)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e         Entry
		mdPath    sql.NullString
		runID     sql.NullString
		processed string
	)
	if err := s.Scan(&e.Hash, &e.Path, &mdPath, &e.Headings, &runID, &processed); err != nil {
		return Entry{}, err
	}
	e.MarkdownPath = mdPath.String
	e.RunID = runID.String
	if t, err := time.Parse(time.RFC3339Nano, processed); err == nil {
		e.ProcessedAt = t
	}
	return e, nil
}
