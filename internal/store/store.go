// Package store keeps a history of clustering runs in SQLite.
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

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

const schemaSQL = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_name TEXT NOT NULL,
    root TEXT NOT NULL,
    documents INTEGER NOT NULL,
    permutations INTEGER NOT NULL,
    seed INTEGER NOT NULL,
    mean REAL NOT NULL,
    std_dev REAL NOT NULL,
    std_factor REAL NOT NULL,
    threshold REAL NOT NULL,
    cutoff REAL NOT NULL,
    skip_reason TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS flags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    label TEXT NOT NULL,
    other TEXT NOT NULL,
    similarity REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_flags_run ON flags(run_id);
`

// Run is one stored clustering run.
type Run struct {
	ID           int64
	FileName     string
	Root         string
	Documents    int
	Permutations int
	Seed         int64
	Mean         float64
	StdDev       float64
	StdFactor    float64
	Threshold    float64
	Cutoff       float64
	SkipReason   string
	CreatedAt    time.Time
}

// Flag is one flagged (label, other) pair of a run.
type Flag struct {
	RunID      int64
	Label      string
	Other      string
	Similarity float64
}

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path and applies
// the schema. ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create history directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps ":memory:" databases and the foreign_keys pragma alive
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a run and its flags atomically and returns the run id.
func (s *Store) SaveRun(ctx context.Context, run Run, flags []Flag) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
INSERT INTO runs (file_name, root, documents, permutations, seed, mean, std_dev, std_factor, threshold, cutoff, skip_reason, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.FileName, run.Root, run.Documents, run.Permutations, run.Seed,
		run.Mean, run.StdDev, run.StdFactor, run.Threshold, run.Cutoff, run.SkipReason,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	if len(flags) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO flags (run_id, label, other, similarity) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("prepare flag insert: %w", err)
		}
		defer stmt.Close()

		for _, f := range flags {
			if _, err := stmt.ExecContext(ctx, id, f.Label, f.Other, f.Similarity); err != nil {
				return 0, fmt.Errorf("insert flag %s/%s: %w", f.Label, f.Other, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
SELECT id, file_name, root, documents, permutations, seed, mean, std_dev, std_factor, threshold, cutoff, skip_reason, created_at
FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			created string
		)
		if err := rows.Scan(&r.ID, &r.FileName, &r.Root, &r.Documents, &r.Permutations, &r.Seed,
			&r.Mean, &r.StdDev, &r.StdFactor, &r.Threshold, &r.Cutoff, &r.SkipReason, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at of run %d: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// FlagsForRun returns the flags of a run in insertion order.
func (s *Store) FlagsForRun(ctx context.Context, runID int64) ([]Flag, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query run %d: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, label, other, similarity FROM flags WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query flags: %w", err)
	}
	defer rows.Close()

	var flags []Flag
	for rows.Next() {
		var f Flag
		if err := rows.Scan(&f.RunID, &f.Label, &f.Other, &f.Similarity); err != nil {
			return nil, fmt.Errorf("scan flag: %w", err)
		}
		flags = append(flags, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flags: %w", err)
	}
	return flags, nil
}
