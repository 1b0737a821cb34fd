// Package runindex records completed runs in a SQLite database so earlier
// conversions can be listed and traced back to their artifacts.
package runindex

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

// Run is one recorded conversion.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Input        string
	Output       string
	Width        int
	Height       int
	Instructions int
	Lines        int
	Nodes        int
	// Ratio is encoded lines over flat lines; 0 for an empty program.
	Ratio   float64
	Archive string
}

// Index is an open run database.
type Index struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Index, error) {
	if path == "" {
		return nil, errors.New("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			instructions INTEGER NOT NULL,
			lines INTEGER NOT NULL,
			nodes INTEGER NOT NULL,
			ratio REAL NOT NULL,
			archive TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS runs_started_at ON runs(started_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (x *Index) Close() error {
	if x == nil || x.db == nil {
		return nil
	}
	return x.db.Close()
}

// Record stores a run. Recording the same ID twice replaces the row.
func (x *Index) Record(ctx context.Context, r Run) error {
	if r.ID == "" {
		return errors.New("run id is required")
	}
	_, err := x.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs
			(id, started_at, finished_at, input, output, width, height, instructions, lines, nodes, ratio, archive)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.FinishedAt.UTC().Format(time.RFC3339Nano),
		r.Input, r.Output,
		r.Width, r.Height,
		r.Instructions, r.Lines, r.Nodes,
		r.Ratio, r.Archive,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", r.ID, err)
	}
	return nil
}

// Recent returns up to n runs, newest first.
func (x *Index) Recent(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := x.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, input, output, width, height, instructions, lines, nodes, ratio, archive
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &started, &finished, &r.Input, &r.Output, &r.Width, &r.Height,
			&r.Instructions, &r.Lines, &r.Nodes, &r.Ratio, &r.Archive); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %s: bad started_at: %w", r.ID, err)
		}
		if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("run %s: bad finished_at: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
