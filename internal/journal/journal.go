// Package journal keeps a local record of every command the executor processed.
// The backend owns command status; the journal exists for operators.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/biobridge/internal/command"
	"github.com/mattjoyce/biobridge/internal/log"
)

const (
	DefaultLimit = 50
	MaxLimit     = 1000

	// Fixed width so stored timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Entry is one processed command within a cycle.
type Entry struct {
	ID          string         `json:"id"`
	CycleID     string         `json:"cycle_id"`
	CommandID   string         `json:"command_id"`
	Kind        command.Kind   `json:"kind"`
	Result      command.Result `json:"result"`
	Detail      string         `json:"detail"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	ReportError string         `json:"report_error,omitempty"`
}

// Store reads and writes the command_journal table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record inserts e. An empty ID is filled with a new uuid; zero timestamps
// default to now.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.CommandID == "" {
		return fmt.Errorf("journal entry has no command id")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now()
	if e.CompletedAt.IsZero() {
		e.CompletedAt = now
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = e.CompletedAt
	}

	var reportErr sql.NullString
	if e.ReportError != "" {
		reportErr = sql.NullString{String: e.ReportError, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO command_journal(id, cycle_id, command_id, kind, result, detail, started_at, completed_at, report_error)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		e.ID, e.CycleID, e.CommandID, string(e.Kind), string(e.Result), e.Detail,
		formatTime(e.StartedAt), formatTime(e.CompletedAt), reportErr,
	)
	if err != nil {
		return fmt.Errorf("record journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A non-positive limit
// means DefaultLimit; limits above MaxLimit are clamped.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, cycle_id, command_id, kind, result, detail, started_at, completed_at, report_error
FROM command_journal
ORDER BY completed_at DESC, rowid DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                      Entry
			kind, result           string
			startedAt, completedAt string
			reportErr              sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.CycleID, &e.CommandID, &kind, &result, &e.Detail, &startedAt, &completedAt, &reportErr); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		e.Kind = command.Kind(kind)
		e.Result = command.Result(result)
		e.ReportError = reportErr.String
		if e.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at of %s: %w", e.ID, err)
		}
		if e.CompletedAt, err = time.Parse(timeLayout, completedAt); err != nil {
			return nil, fmt.Errorf("parse completed_at of %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return out, nil
}

// Prune deletes entries completed longer than retention ago.
func (s *Store) Prune(ctx context.Context, retention time.Duration) error {
	if retention <= 0 {
		return fmt.Errorf("journal retention must be positive, got %s", retention)
	}
	cutoff := formatTime(time.Now().Add(-retention))
	res, err := s.db.ExecContext(ctx, "DELETE FROM command_journal WHERE completed_at < ?;", cutoff)
	if err != nil {
		return fmt.Errorf("prune journal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		log.WithComponent("journal").Info("pruned journal entries", "count", n, "retention", retention.String())
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
