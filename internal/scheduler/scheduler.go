// Package scheduler runs named recurring jobs whose interval can be changed at
// runtime.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/mattjoyce/biobridge/internal/config"
)

// ErrJobNotFound is returned for operations on a name that was never registered.
var ErrJobNotFound = errors.New("job not found")

const storeTimeout = 5 * time.Second

// JobFunc is the body of a recurring job.
type JobFunc func(ctx context.Context) error

// JobInfo is a point-in-time view of a registered job.
type JobInfo struct {
	Name      string        `json:"name"`
	Every     time.Duration `json:"every"`
	Jitter    time.Duration `json:"jitter"`
	LastRun   time.Time     `json:"last_run,omitzero"`
	LastError string        `json:"last_error,omitempty"`
}

type job struct {
	name   string
	fn     JobFunc
	reset  chan struct{}
	every  time.Duration
	jitter time.Duration

	lastRun time.Time
	lastErr error
}

// Scheduler manages recurring jobs. Each job runs on its own timer; runs of
// the same job never overlap.
type Scheduler struct {
	store  IntervalStore
	logger *slog.Logger

	mu      sync.Mutex
	jobs    map[string]*job
	started bool

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a Scheduler. A nil store keeps intervals in memory only.
func New(store IntervalStore, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:  store,
		logger: logger.With("component", "scheduler"),
		jobs:   make(map[string]*job),
		stopCh: make(chan struct{}),
	}
}

// Register adds a job. It must be called before Start.
func (s *Scheduler) Register(name string, every, jitter time.Duration, fn JobFunc) error {
	if name == "" {
		return fmt.Errorf("job name is empty")
	}
	if every <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", name, every)
	}
	if jitter < 0 {
		return fmt.Errorf("job %s: jitter must not be negative, got %s", name, jitter)
	}
	if fn == nil {
		return fmt.Errorf("job %s: nil func", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("job %s: scheduler already started", name)
	}
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %s already registered", name)
	}
	s.jobs[name] = &job{
		name:   name,
		fn:     fn,
		reset:  make(chan struct{}, 1),
		every:  every,
		jitter: jitter,
	}
	return nil
}

// RegisterEvery is Register with the interval given as a config string
// ("15m", "hourly", "2d").
func (s *Scheduler) RegisterEvery(name, every string, jitter time.Duration, fn JobFunc) error {
	d, err := parseScheduleEvery(every)
	if err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}
	return s.Register(name, d, jitter, fn)
}

// SetRepeatInterval changes the interval of a job. The new interval is
// persisted first, then the job's timer restarts from now.
func (s *Scheduler) SetRepeatInterval(name string, every time.Duration) error {
	if every <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", name, every)
	}

	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := s.store.SaveInterval(ctx, name, every); err != nil {
			return fmt.Errorf("persist interval: %w", err)
		}
	}

	s.mu.Lock()
	previous := j.every
	j.every = every
	s.mu.Unlock()

	select {
	case j.reset <- struct{}{}:
	default:
	}
	s.logger.Info("Job interval changed", "job", name, "previous", previous.String(), "every", every.String())
	return nil
}

// Interval returns the current interval of a job.
func (s *Scheduler) Interval(name string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return j.every, nil
}

// Jobs lists registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		info := JobInfo{Name: j.name, Every: j.every, Jitter: j.jitter, LastRun: j.lastRun}
		if j.lastErr != nil {
			info.LastError = j.lastErr.Error()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// Start restores persisted intervals and starts one timer loop per job.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already started")
	}
	s.started = true
	jobs := make([]*job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	s.logger.Info("Starting scheduler", "jobs", len(jobs))

	for _, j := range jobs {
		if err := s.restoreInterval(ctx, j); err != nil {
			return fmt.Errorf("scheduler restore failed: %w", err)
		}
	}
	for _, j := range jobs {
		s.wg.Add(1)
		go s.runLoop(ctx, j)
	}
	return nil
}

// Stop halts every job loop and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping scheduler")
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Scheduler) restoreInterval(ctx context.Context, j *job) error {
	if s.store == nil {
		return nil
	}
	every, ok, err := s.store.LoadInterval(ctx, j.name)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	s.mu.Lock()
	j.every = every
	s.mu.Unlock()
	s.logger.Info("Restored persisted interval", "job", j.name, "every", every.String())
	return nil
}

func (s *Scheduler) nextDelay(j *job) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calculateJitteredInterval(j.every, j.jitter)
}

func (s *Scheduler) runLoop(ctx context.Context, j *job) {
	defer s.wg.Done()

	timer := time.NewTimer(s.nextDelay(j))
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			s.fire(ctx, j)
			timer.Reset(s.nextDelay(j))
		case <-j.reset:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.nextDelay(j))
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, j *job) {
	s.logger.Debug("Running job", "job", j.name)
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Job panicked", "job", j.name, "panic", r, "stack", string(debug.Stack()))
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return j.fn(ctx)
	}()
	if err != nil {
		s.logger.Error("Job failed", "job", j.name, "error", err)
	}

	s.mu.Lock()
	j.lastRun = time.Now().UTC()
	j.lastErr = err
	s.mu.Unlock()
}

// calculateJitteredInterval adds a random jitter to the base interval.
func calculateJitteredInterval(baseInterval time.Duration, jitter time.Duration) time.Duration {
	if jitter <= 0 {
		return baseInterval
	}
	randomJitter := time.Duration(rand.Int63n(jitter.Nanoseconds()))
	return baseInterval + randomJitter
}

// parseScheduleEvery converts the 'every' string from config to a base duration.
func parseScheduleEvery(every string) (time.Duration, error) {
	return config.ParseInterval(every)
}
