// Package history keeps a local SQLite log of validation and healing
// runs so past outcomes can be reviewed per file.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/tuivet/tuivet/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file TEXT NOT NULL,
	status TEXT NOT NULL,
	depth TEXT NOT NULL,
	error_count INTEGER NOT NULL DEFAULT 0,
	warning_count INTEGER NOT NULL DEFAULT 0,
	healed INTEGER NOT NULL DEFAULT 0,
	iterations INTEGER NOT NULL DEFAULT 0,
	converged INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_file ON runs(file);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// Run is one recorded pipeline invocation.
type Run struct {
	ID           int64
	File         string
	Status       types.Status
	Depth        types.Depth
	ErrorCount   int
	WarningCount int
	Healed       bool
	Iterations   int
	Converged    bool
	Duration     time.Duration
	CreatedAt    time.Time
}

// Store is the SQLite-backed run log.
type Store struct {
	db *sql.DB
}

// Open creates or opens the run log at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one run and returns its assigned ID.
func (s *Store) Record(ctx context.Context, run *Run) (int64, error) {
	created := run.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (file, status, depth, error_count, warning_count,
			healed, iterations, converged, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.File, string(run.Status), string(run.Depth),
		run.ErrorCount, run.WarningCount,
		boolInt(run.Healed), run.Iterations, boolInt(run.Converged),
		run.Duration.Milliseconds(), created.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}
	return id, nil
}

// Recent returns the newest runs, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file, status, depth, error_count, warning_count,
			healed, iterations, converged, duration_ms, created_at
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// ForFile returns the newest runs recorded for one file.
func (s *Store) ForFile(ctx context.Context, file string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file, status, depth, error_count, warning_count,
			healed, iterations, converged, duration_ms, created_at
		FROM runs WHERE file = ? ORDER BY created_at DESC, id DESC LIMIT ?`, file, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		var (
			run               Run
			status, depth     string
			healed, converged int
			durationMS        int64
			createdUnix       int64
		)
		if err := rows.Scan(&run.ID, &run.File, &status, &depth,
			&run.ErrorCount, &run.WarningCount,
			&healed, &run.Iterations, &converged,
			&durationMS, &createdUnix); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Status = types.Status(status)
		run.Depth = types.Depth(depth)
		run.Healed = healed != 0
		run.Converged = converged != 0
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.CreatedAt = time.Unix(createdUnix, 0)
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
