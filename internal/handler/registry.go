// Package handler holds one Handler per command kind and the registry that
// resolves a kind to its handler.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mattjoyce/biobridge/internal/backend"
	"github.com/mattjoyce/biobridge/internal/command"
	"github.com/mattjoyce/biobridge/internal/device"
)

//go:generate mockgen -destination=mocks/mock_collaborators.go -package=mocks github.com/mattjoyce/biobridge/internal/handler Backend,IntervalSetter

// Handler executes one kind of command. Expected failures come back as a
// failed Outcome, never as a panic.
type Handler interface {
	Kind() command.Kind
	Handle(ctx context.Context, cmd command.Command) command.Outcome
}

// Backend is the subset of the backend client handlers push results through.
type Backend interface {
	CreateUserRemote(ctx context.Context, u backend.RemoteUser) error
	DeleteUserRemote(ctx context.Context, userHash string) error
	SendLogs(ctx context.Context, logs []device.LogEntry) error
	SendFingerTemplates(ctx context.Context, batch backend.TemplateBatch) error
	SendFaceTemplates(ctx context.Context, batch backend.TemplateBatch) error
}

// IntervalSetter changes the repeat interval of a named recurring job.
type IntervalSetter interface {
	SetRepeatInterval(name string, every time.Duration) error
}

// UnknownKindError is returned by Lookup for a kind with no handler.
type UnknownKindError struct {
	Kind command.Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown kind: %s", e.Kind)
}

// Deps are the collaborators shared by all handlers.
type Deps struct {
	Devices   device.Factory
	Backend   Backend
	Scheduler IntervalSetter
	// FetchJob is the scheduler job update_interval retimes.
	FetchJob string
	Logger   *slog.Logger
}

// Registry maps a kind to its handler. It is built once and read-only after.
type Registry struct {
	handlers map[command.Kind]Handler
}

// NewRegistry builds a registry holding every supported kind.
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.FetchJob == "" {
		deps.FetchJob = "fetch"
	}
	b := base{devices: deps.Devices, backend: deps.Backend, logger: deps.Logger.With("component", "handler")}

	return NewRegistryOf(
		&createUser{base: b},
		&deleteUser{base: b},
		&getLog{base: b},
		&getTemplates{base: b, kind: command.KindGetUserFingerTemplates, face: false},
		&getTemplates{base: b, kind: command.KindGetUserFaceTemplates, face: true},
		&setTemplate{base: b, kind: command.KindSetUserFingerTemplates, face: false},
		&setTemplate{base: b, kind: command.KindSetUserFaceTemplates, face: true},
		&updateInterval{scheduler: deps.Scheduler, job: deps.FetchJob},
	)
}

// NewRegistryOf builds a registry from explicit handlers. A later handler for
// the same kind replaces an earlier one.
func NewRegistryOf(handlers ...Handler) *Registry {
	r := &Registry{handlers: make(map[command.Kind]Handler, len(handlers))}
	for _, h := range handlers {
		r.handlers[h.Kind()] = h
	}
	return r
}

// Lookup returns the handler for kind or an *UnknownKindError.
func (r *Registry) Lookup(kind command.Kind) (Handler, error) {
	h, ok := r.handlers[kind]
	if !ok {
		return nil, &UnknownKindError{Kind: kind}
	}
	return h, nil
}

// Kinds lists registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}
