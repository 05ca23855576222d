// Package session turns wake signals into fetch-and-execute cycles.
//
// A cycle fetches the pending queue and walks it in order: report
// in_progress, dispatch, report the terminal status with the encoded outcome
// as message. Wake signals that arrive while a cycle runs are folded into a
// single follow-up cycle.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/biobridge/internal/command"
	"github.com/mattjoyce/biobridge/internal/events"
	"github.com/mattjoyce/biobridge/internal/journal"
	"github.com/mattjoyce/biobridge/internal/log"
	"github.com/mattjoyce/biobridge/internal/metrics"
)

// Wake sources.
const (
	SourceRealtime = "realtime"
	SourceSchedule = "schedule"
	SourceAPI      = "api"
	SourceStartup  = "startup"
)

// Queue is the backend side of a cycle.
type Queue interface {
	FetchPending(ctx context.Context) ([]command.Command, error)
	ReportStatus(ctx context.Context, id string, status command.Status, message string) error
}

// Runner executes one command.
type Runner interface {
	Run(ctx context.Context, cmd command.Command) command.Outcome
}

// Journal records processed commands.
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Observer receives cycle-level measurements.
type Observer interface {
	WakeSignal(source string)
	FetchCycle(result string, elapsed time.Duration)
	StatusReportFailure()
}

// Deps wires a Loop. Journal, Observer and Events are optional.
type Deps struct {
	Queue    Queue
	Runner   Runner
	Journal  Journal
	Observer Observer
	Events   *events.Hub
}

// CycleSummary describes a finished cycle.
type CycleSummary struct {
	ID        string        `json:"cycle_id"`
	Fetched   int           `json:"fetched"`
	Completed int           `json:"completed"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Loop owns the wake channel and runs cycles one at a time.
type Loop struct {
	queue    Queue
	runner   Runner
	journal  Journal
	observer Observer
	events   *events.Hub
	logger   *slog.Logger

	wake chan string
}

func New(deps Deps) (*Loop, error) {
	if deps.Queue == nil {
		return nil, fmt.Errorf("session: queue is required")
	}
	if deps.Runner == nil {
		return nil, fmt.Errorf("session: runner is required")
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	return &Loop{
		queue:    deps.Queue,
		runner:   deps.Runner,
		journal:  deps.Journal,
		observer: deps.Observer,
		events:   deps.Events,
		logger:   log.WithComponent("session"),
		wake:     make(chan string, 1),
	}, nil
}

// Trigger requests a cycle without blocking. It returns false when a cycle is
// already pending, in which case this signal merges into it.
func (l *Loop) Trigger(source string) bool {
	l.observer.WakeSignal(source)
	select {
	case l.wake <- source:
		l.logger.Info("wake signal queued", "source", source)
		l.publish(events.WakeReceived, map[string]any{"source": source, "queued": true})
		return true
	default:
		l.logger.Debug("wake signal coalesced", "source", source)
		l.publish(events.WakeReceived, map[string]any{"source": source, "queued": false})
		return false
	}
}

// Run waits for triggers and runs cycles until ctx ends.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("session loop started")
	defer l.logger.Info("session loop stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case source := <-l.wake:
			if _, err := l.RunCycle(ctx); err != nil {
				l.logger.Error("cycle failed", "source", source, "error", err)
			}
		}
	}
}

// RunCycle fetches the pending queue once and processes it. A fetch error
// ends the cycle with no command touched.
func (l *Loop) RunCycle(ctx context.Context) (summary CycleSummary, err error) {
	summary.ID = uuid.NewString()
	cycleLogger := log.WithCycle(summary.ID).With(slog.String("component", "session"))
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			cycleLogger.Error("cycle panicked", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("cycle %s panicked: %v", summary.ID, r)
		}
		summary.Duration = time.Since(started)

		result := metrics.CycleSuccess
		switch {
		case err != nil:
			result = metrics.CycleError
		case summary.Fetched == 0:
			result = metrics.CycleEmpty
		}
		l.observer.FetchCycle(result, summary.Duration)
		l.publish(events.CycleFinished, map[string]any{
			"cycle_id":  summary.ID,
			"result":    result,
			"fetched":   summary.Fetched,
			"completed": summary.Completed,
			"failed":    summary.Failed,
		})
		cycleLogger.Info("cycle finished",
			"result", result,
			"fetched", summary.Fetched,
			"completed", summary.Completed,
			"failed", summary.Failed,
			"duration_ms", summary.Duration.Milliseconds(),
		)
	}()

	l.publish(events.CycleStarted, map[string]any{"cycle_id": summary.ID})
	cmds, err := l.queue.FetchPending(ctx)
	if err != nil {
		return summary, fmt.Errorf("fetch pending: %w", err)
	}
	summary.Fetched = len(cmds)
	cycleLogger.Info("pending commands fetched", "count", len(cmds))

	for _, cmd := range cmds {
		if ctx.Err() != nil {
			cycleLogger.Warn("cycle interrupted", "remaining_from", cmd.ID)
			return summary, ctx.Err()
		}
		out := l.process(ctx, summary.ID, cmd)
		if out.OK() {
			summary.Completed++
		} else {
			summary.Failed++
		}
	}
	return summary, nil
}

func (l *Loop) process(ctx context.Context, cycleID string, cmd command.Command) (out command.Outcome) {
	cmdLogger := log.WithCommand(cmd.ID, string(cmd.Kind)).With(slog.String("cycle_id", cycleID))
	started := time.Now()

	var reportErrs []error
	report := func(status command.Status, message string) {
		if err := l.queue.ReportStatus(context.WithoutCancel(ctx), cmd.ID, status, message); err != nil {
			cmdLogger.Warn("status report failed", "status", string(status), "error", err)
			l.observer.StatusReportFailure()
			reportErrs = append(reportErrs, err)
		}
	}

	// Once in_progress is attempted the command gets exactly one terminal
	// report, even if something below panics. The panic still reaches RunCycle.
	out = command.Failed(cmd.Kind, "unexpected error")
	terminalSent := false
	defer func() {
		if !terminalSent {
			terminalSent = true
			report(out.Result.Status(), out.Encode())
		}
	}()

	l.publish(events.CommandStarted, map[string]any{"cycle_id": cycleID, "command_id": cmd.ID, "kind": cmd.Kind})
	report(command.StatusInProgress, "")

	out = l.runner.Run(ctx, cmd)

	// Detached from ctx so shutdown mid-command still closes the command.
	terminalSent = true
	report(out.Result.Status(), out.Encode())

	entry := journal.Entry{
		CycleID:     cycleID,
		CommandID:   cmd.ID,
		Kind:        cmd.Kind,
		Result:      out.Result,
		Detail:      out.Detail,
		StartedAt:   started,
		CompletedAt: time.Now(),
	}
	if len(reportErrs) > 0 {
		entry.ReportError = reportErrs[len(reportErrs)-1].Error()
	}
	if l.journal != nil {
		if err := l.journal.Record(ctx, entry); err != nil {
			cmdLogger.Warn("journal record failed", "error", err)
		}
	}
	l.publish(events.CommandFinished, map[string]any{
		"cycle_id":   cycleID,
		"command_id": cmd.ID,
		"kind":       cmd.Kind,
		"result":     out.Result,
		"detail":     out.Detail,
	})
	return out
}

func (l *Loop) publish(eventType string, data any) {
	if l.events != nil {
		l.events.Publish(eventType, data)
	}
}

type nopObserver struct{}

func (nopObserver) WakeSignal(string)                {}
func (nopObserver) FetchCycle(string, time.Duration) {}
func (nopObserver) StatusReportFailure()             {}
