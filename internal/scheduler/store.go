package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteIntervalStore keeps intervals in the job_interval table.
type SQLiteIntervalStore struct {
	db *sql.DB
}

func NewSQLiteIntervalStore(db *sql.DB) *SQLiteIntervalStore {
	return &SQLiteIntervalStore{db: db}
}

func (s *SQLiteIntervalStore) LoadInterval(ctx context.Context, name string) (time.Duration, bool, error) {
	var ns int64
	err := s.db.QueryRowContext(ctx, "SELECT interval_ns FROM job_interval WHERE job_name = ?;", name).Scan(&ns)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read interval for %s: %w", name, err)
	}
	if ns <= 0 {
		return 0, false, fmt.Errorf("stored interval for %s is not positive: %d", name, ns)
	}
	return time.Duration(ns), true, nil
}

func (s *SQLiteIntervalStore) SaveInterval(ctx context.Context, name string, every time.Duration) error {
	if name == "" {
		return fmt.Errorf("job name is empty")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO job_interval(job_name, interval_ns, updated_at) VALUES(?, ?, ?)
ON CONFLICT(job_name) DO UPDATE SET interval_ns = excluded.interval_ns, updated_at = excluded.updated_at;`,
		name, int64(every), now)
	if err != nil {
		return fmt.Errorf("save interval for %s: %w", name, err)
	}
	return nil
}
