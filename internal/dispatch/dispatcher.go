package dispatch

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/mattjoyce/biobridge/internal/command"
	"github.com/mattjoyce/biobridge/internal/handler"
	"github.com/mattjoyce/biobridge/internal/log"
)

const detailPanic = "unexpected error"

// Resolver finds the handler for a command kind.
type Resolver interface {
	Lookup(kind command.Kind) (handler.Handler, error)
}

// Recorder receives one observation per dispatched command.
type Recorder interface {
	ObserveCommand(kind command.Kind, result command.Result, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCommand(command.Kind, command.Result, time.Duration) {}

// Dispatcher executes commands against a Resolver.
type Dispatcher struct {
	resolver Resolver
	recorder Recorder
}

// New creates a Dispatcher. A nil recorder discards observations.
func New(resolver Resolver, recorder Recorder) *Dispatcher {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Dispatcher{
		resolver: resolver,
		recorder: recorder,
	}
}

// Run executes cmd and always returns an Outcome for cmd.Kind.
func (d *Dispatcher) Run(ctx context.Context, cmd command.Command) (out command.Outcome) {
	cmdLogger := log.WithCommand(cmd.ID, string(cmd.Kind)).With(slog.String("component", "dispatch"))
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			cmdLogger.Error("handler panicked", "panic", r, "stack", string(debug.Stack()))
			out = command.Failed(cmd.Kind, detailPanic)
		}
		elapsed := time.Since(started)
		d.recorder.ObserveCommand(cmd.Kind, out.Result, elapsed)
		if out.OK() {
			cmdLogger.Info("command completed", "detail", out.Detail, "duration_ms", elapsed.Milliseconds())
		} else {
			cmdLogger.Warn("command failed", "detail", out.Detail, "duration_ms", elapsed.Milliseconds())
		}
	}()

	h, err := d.resolver.Lookup(cmd.Kind)
	if err != nil {
		return command.Failed(cmd.Kind, err.Error())
	}

	cmdLogger.Info("executing command")
	out = h.Handle(ctx, cmd)
	out.Kind = cmd.Kind
	if out.Result != command.ResultCompleted {
		out.Result = command.ResultFailed
	}
	out.Detail = command.SanitizeDetail(out.Detail)
	return out
}
