// Package journal records transfer runs in a local SQLite file so earlier
// imports into a project can be reviewed.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lherron/circmerge/internal/db"
)

// Status is the outcome of a run.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
	StatusDryRun Status = "dry-run"
)

// Entry is one transfer within a run.
type Entry struct {
	Name     string `json:"name" yaml:"name"`
	Rename   string `json:"rename,omitempty" yaml:"rename,omitempty"`
	Replaced int    `json:"replaced" yaml:"replaced"`
}

// Run is one invocation that loaded a destination and applied transfers.
type Run struct {
	ID          string    `json:"id" yaml:"id"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time `json:"finished_at" yaml:"finished_at"`
	Command     string    `json:"command" yaml:"command"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	Destination string    `json:"destination" yaml:"destination"`
	RevBefore   string    `json:"rev_before,omitempty" yaml:"rev_before,omitempty"`
	RevAfter    string    `json:"rev_after,omitempty" yaml:"rev_after,omitempty"`
	Status      Status    `json:"status" yaml:"status"`
	Error       string    `json:"error,omitempty" yaml:"error,omitempty"`
	Entries     []Entry   `json:"entries" yaml:"entries"`
}

// Journal is an open run log.
type Journal struct {
	db *db.DB
}

// Open opens (creating if needed) the journal at path and brings its schema
// up to date.
func Open(path string) (*Journal, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := database.Migrate(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	return &Journal{db: database}, nil
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.db.Path()
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores run and its entries. A missing ID is filled with a new UUID
// and a zero FinishedAt with the current time.
func (j *Journal) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, command, source, destination, rev_before, rev_after, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, formatTimestamp(run.StartedAt), formatTimestamp(run.FinishedAt), run.Command, run.Source,
		run.Destination, run.RevBefore, run.RevAfter, string(run.Status), run.Error)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, e := range run.Entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_entries (run_id, seq, name, rename, replaced)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, i, e.Name, e.Rename, e.Replaced)
		if err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// List returns the most recent runs first. A limit of zero or less returns
// every run.
func (j *Journal) List(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, started_at, finished_at, command, source, destination, rev_before, rev_after, status, error
		FROM runs
		ORDER BY started_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished, status string
		if err := rows.Scan(&run.ID, &started, &finished, &run.Command, &run.Source, &run.Destination,
			&run.RevBefore, &run.RevAfter, &status, &run.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Status = Status(status)
		if run.StartedAt, err = parseTimestamp(started); err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		if run.FinishedAt, err = parseTimestamp(finished); err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	rows.Close()

	for i := range runs {
		entries, err := j.entries(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Entries = entries
	}

	return runs, nil
}

func (j *Journal) entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT name, rename, replaced FROM run_entries WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for %s: %w", runID, err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Rename, &e.Replaced); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const timestampLayout = "2006-01-02T15:04:05.000Z"

// formatTimestamp formats a time.Time as ISO-8601 with Z suffix.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
