package handler

import (
	"context"
	"fmt"

	"github.com/mattjoyce/biobridge/internal/command"
)

// updateInterval retimes the recurring fetch job. It never touches a device.
type updateInterval struct {
	scheduler IntervalSetter
	job       string
}

func (h *updateInterval) Kind() command.Kind { return command.KindUpdateInterval }

func (h *updateInterval) Handle(ctx context.Context, cmd command.Command) command.Outcome {
	kind := h.Kind()
	raw, ok := cmd.Payload.Get("interval")
	if !ok {
		return command.Failed(kind, detailInvalid)
	}
	every, err := parseMinutes(raw)
	if err != nil {
		return command.Failed(kind, detailInvalid)
	}
	if h.scheduler == nil {
		return command.Failed(kind, "no scheduler configured")
	}
	if err := h.scheduler.SetRepeatInterval(h.job, every); err != nil {
		return command.Failed(kind, err.Error())
	}
	return command.Completed(kind, fmt.Sprintf("interval updated successfully to %s", every))
}
