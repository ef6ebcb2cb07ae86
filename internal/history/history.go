// Package history records extraction runs and their diagnostics in a
// project-local SQLite database, so past failures can be listed and browsed
// after the original log output is gone.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/desmoke/desmoke/internal/diag"
)

// DB wraps the SQLite history database.
type DB struct {
	*sql.DB
}

// Open initializes the history database at path and applies pending
// migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{DB: db}, nil
}

// Run is one recorded invocation of the extractor.
type Run struct {
	ID        string
	StartedAt time.Time
	Format    string
	Source    string
	Count     int
}

// StartRun records the beginning of an extraction run and returns it.
func (db *DB) StartRun(ctx context.Context, format, source string) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Format:    format,
		Source:    source,
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, format, source, diagnostics)
		VALUES (?, ?, ?, ?, 0)
	`, run.ID, run.StartedAt, run.Format, run.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

// RecordDiagnostic appends one diagnostic to a run. seq preserves emission
// order.
func (db *DB) RecordDiagnostic(ctx context.Context, runID string, seq int, d diag.Diagnostic) error {
	var file string
	var line, col int
	if d.Pos != nil {
		file, line, col = d.Pos.File, d.Pos.Line, d.Pos.Column
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO diagnostics (run_id, seq, file, line, col, severity, message, rendered)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, seq, file, line, col, string(d.Severity), d.Message, d.String())
	if err != nil {
		return fmt.Errorf("failed to record diagnostic: %w", err)
	}
	return nil
}

// FinishRun stores the final diagnostic count of a run.
func (db *DB) FinishRun(ctx context.Context, runID string, count int) error {
	_, err := db.ExecContext(ctx, `
		UPDATE runs SET diagnostics = ? WHERE id = ?
	`, count, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, started_at, format, source, diagnostics
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Format, &r.Source, &r.Count); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent run, or nil when the history is empty.
func (db *DB) LatestRun(ctx context.Context) (*Run, error) {
	runs, err := db.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// GetRun returns a run by id, or nil when it does not exist.
func (db *DB) GetRun(ctx context.Context, id string) (*Run, error) {
	var r Run
	err := db.QueryRowContext(ctx, `
		SELECT id, started_at, format, source, diagnostics
		FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &r.StartedAt, &r.Format, &r.Source, &r.Count)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return &r, nil
}

// StoredDiagnostic is one persisted diagnostic of a run.
type StoredDiagnostic struct {
	Seq      int
	File     string
	Line     int
	Col      int
	Severity string
	Message  string
	Rendered string
}

// Diagnostics returns a run's diagnostics in emission order.
func (db *DB) Diagnostics(ctx context.Context, runID string) ([]StoredDiagnostic, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT seq, file, line, col, severity, message, rendered
		FROM diagnostics
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostics: %w", err)
	}
	defer rows.Close()

	var diags []StoredDiagnostic
	for rows.Next() {
		var d StoredDiagnostic
		if err := rows.Scan(&d.Seq, &d.File, &d.Line, &d.Col, &d.Severity, &d.Message, &d.Rendered); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		diags = append(diags, d)
	}
	return diags, rows.Err()
}
