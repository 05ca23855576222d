package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/biobridge/internal/scheduler/mocks"
)

// TestLogBuffer is a bytes.Buffer that can be used to capture log output.
type TestLogBuffer struct {
	mu sync.Mutex
	bytes.Buffer
}

func (b *TestLogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Buffer.Write(p)
}

func (b *TestLogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Buffer.String()
}

// NewTestSlogger creates a new *slog.Logger that writes to a TestLogBuffer.
func NewTestSlogger() (*slog.Logger, *TestLogBuffer) {
	buf := &TestLogBuffer{}
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), buf
}

func noop(context.Context) error { return nil }

func TestCalculateJitteredInterval(t *testing.T) {
	tests := []struct {
		name         string
		baseInterval time.Duration
		jitter       time.Duration
	}{
		{name: "No Jitter", baseInterval: 1 * time.Minute, jitter: 0},
		{name: "Positive Jitter", baseInterval: 5 * time.Minute, jitter: 30 * time.Second},
		{name: "Large Jitter", baseInterval: 1 * time.Hour, jitter: 15 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 100; i++ {
				jittered := calculateJitteredInterval(tt.baseInterval, tt.jitter)
				if tt.jitter == 0 {
					assert.Equal(t, tt.baseInterval, jittered)
				} else {
					assert.GreaterOrEqual(t, jittered, tt.baseInterval)
					assert.LessOrEqual(t, jittered, tt.baseInterval+tt.jitter)
				}
			}
		})
	}
}

func TestParseScheduleEvery(t *testing.T) {
	tests := []struct {
		name     string
		every    string
		expected time.Duration
		hasError bool
	}{
		{"15m", "15m", 15 * time.Minute, false},
		{"hourly", "hourly", 1 * time.Hour, false},
		{"2w", "2w", 14 * 24 * time.Hour, false},
		{"unknown", "foo", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			duration, err := parseScheduleEvery(tt.every)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, duration)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	slogger, _ := NewTestSlogger()
	s := New(nil, slogger)

	require.NoError(t, s.Register("fetch", 15*time.Minute, 0, noop))
	assert.Error(t, s.Register("fetch", time.Minute, 0, noop), "duplicate")
	assert.Error(t, s.Register("", time.Minute, 0, noop))
	assert.Error(t, s.Register("zero", 0, 0, noop))
	assert.Error(t, s.Register("neg-jitter", time.Minute, -time.Second, noop))
	assert.Error(t, s.Register("nil", time.Minute, 0, nil))
	assert.Error(t, s.RegisterEvery("bad", "sometimes", 0, noop))
	require.NoError(t, s.RegisterEvery("journal-prune", "daily", 0, noop))

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "fetch", jobs[0].Name)
	assert.Equal(t, "journal-prune", jobs[1].Name)
	assert.Equal(t, 24*time.Hour, jobs[1].Every)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()
	assert.Error(t, s.Register("late", time.Minute, 0, noop))
	assert.Error(t, s.Start(context.Background()))
}

func TestSetRepeatInterval(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIntervalStore(ctrl)
	slogger, logBuf := NewTestSlogger()
	s := New(store, slogger)
	require.NoError(t, s.Register("fetch", 15*time.Minute, 0, noop))

	t.Run("unknown job", func(t *testing.T) {
		err := s.SetRepeatInterval("nightly", time.Minute)
		assert.True(t, errors.Is(err, ErrJobNotFound))
		_, err = s.Interval("nightly")
		assert.True(t, errors.Is(err, ErrJobNotFound))
	})

	t.Run("non-positive interval", func(t *testing.T) {
		assert.Error(t, s.SetRepeatInterval("fetch", 0))
		assert.Error(t, s.SetRepeatInterval("fetch", -time.Minute))
	})

	t.Run("persisted then applied", func(t *testing.T) {
		store.EXPECT().SaveInterval(gomock.Any(), "fetch", 30*time.Minute).Return(nil)
		require.NoError(t, s.SetRepeatInterval("fetch", 30*time.Minute))
		every, err := s.Interval("fetch")
		require.NoError(t, err)
		assert.Equal(t, 30*time.Minute, every)
		assert.Contains(t, logBuf.String(), "Job interval changed")
	})

	t.Run("persist failure leaves interval", func(t *testing.T) {
		store.EXPECT().SaveInterval(gomock.Any(), "fetch", 5*time.Minute).Return(errors.New("disk full"))
		err := s.SetRepeatInterval("fetch", 5*time.Minute)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		every, _ := s.Interval("fetch")
		assert.Equal(t, 30*time.Minute, every)
	})
}

func TestStartRestoresPersistedInterval(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIntervalStore(ctrl)
	slogger, _ := NewTestSlogger()
	s := New(store, slogger)
	require.NoError(t, s.Register("fetch", 15*time.Minute, 0, noop))
	require.NoError(t, s.Register("journal-prune", 24*time.Hour, 0, noop))

	store.EXPECT().LoadInterval(gomock.Any(), "fetch").Return(2*time.Hour, true, nil)
	store.EXPECT().LoadInterval(gomock.Any(), "journal-prune").Return(time.Duration(0), false, nil)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	every, err := s.Interval("fetch")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, every)
	every, _ = s.Interval("journal-prune")
	assert.Equal(t, 24*time.Hour, every)
}

func TestStartFailsWhenStoreFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIntervalStore(ctrl)
	slogger, _ := NewTestSlogger()
	s := New(store, slogger)
	require.NoError(t, s.Register("fetch", 15*time.Minute, 0, noop))

	store.EXPECT().LoadInterval(gomock.Any(), "fetch").Return(time.Duration(0), false, errors.New("locked"))
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")
}

func TestIntervalChangeTakesEffectImmediately(t *testing.T) {
	slogger, _ := NewTestSlogger()
	s := New(nil, slogger)

	fired := make(chan struct{}, 8)
	require.NoError(t, s.Register("fetch", time.Hour, 0, func(context.Context) error {
		fired <- struct{}{}
		return nil
	}))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	select {
	case <-fired:
		t.Fatal("job fired before its interval")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, s.SetRepeatInterval("fetch", 20*time.Millisecond))
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not fire after interval change")
	}
}

func TestJobPanicDoesNotStopLoop(t *testing.T) {
	slogger, logBuf := NewTestSlogger()
	s := New(nil, slogger)

	var runs atomic.Int32
	done := make(chan struct{})
	require.NoError(t, s.Register("flaky", 10*time.Millisecond, 0, func(context.Context) error {
		switch runs.Add(1) {
		case 1:
			panic("boom")
		case 2:
			return errors.New("backend down")
		case 3:
			close(done)
		}
		return nil
	}))
	require.NoError(t, s.Start(context.Background()))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job loop stopped after panic")
	}
	s.Stop()

	assert.Contains(t, logBuf.String(), "Job panicked")
	assert.Contains(t, logBuf.String(), "backend down")
	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.False(t, jobs[0].LastRun.IsZero())
}

func TestStopIsIdempotentAndHonoursContext(t *testing.T) {
	slogger, _ := NewTestSlogger()
	s := New(nil, slogger)
	require.NoError(t, s.Register("fetch", time.Hour, 0, noop))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()
	s.Stop()
	s.Stop()
}
