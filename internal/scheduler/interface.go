package scheduler

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/mock_interval_store.go -package=mocks github.com/mattjoyce/biobridge/internal/scheduler IntervalStore

// IntervalStore persists repeat intervals so operator changes survive restarts.
type IntervalStore interface {
	// LoadInterval returns the stored interval for name. ok is false when none is stored.
	LoadInterval(ctx context.Context, name string) (every time.Duration, ok bool, err error)
	SaveInterval(ctx context.Context, name string, every time.Duration) error
}
