package handler

import (
	"context"
	"log/slog"

	"github.com/mattjoyce/biobridge/internal/command"
	"github.com/mattjoyce/biobridge/internal/device"
)

type base struct {
	devices device.Factory
	backend Backend
	logger  *slog.Logger
}

// connect opens a fresh session to t. On failure the session is already
// closed and the returned gateway is nil.
func (b base) connect(ctx context.Context, t target) (device.Gateway, error) {
	gw := b.devices.Open()
	if err := gw.Connect(ctx, t.ip, t.port); err != nil {
		_ = gw.Close()
		b.logger.Warn("device connect failed", "address", t.address(), "error", err)
		return nil, err
	}
	return gw, nil
}

func (b base) closeSession(gw device.Gateway, t target) {
	if err := gw.Close(); err != nil {
		b.logger.Debug("device close failed", "address", t.address(), "error", err)
	}
}

// reject logs why extraction failed and returns the generic invalid outcome.
func (b base) reject(kind command.Kind, cmd command.Command, err error) command.Outcome {
	b.logger.Warn("invalid task data", "command_id", cmd.ID, "kind", string(kind), "reason", err.Error())
	return command.Failed(kind, detailInvalid)
}
