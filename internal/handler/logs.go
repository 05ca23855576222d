package handler

import (
	"context"

	"github.com/mattjoyce/biobridge/internal/command"
	"github.com/mattjoyce/biobridge/internal/device"
)

type getLog struct{ base }

func (h *getLog) Kind() command.Kind { return command.KindGetLog }

func (h *getLog) Handle(ctx context.Context, cmd command.Command) command.Outcome {
	kind := h.Kind()
	v, err := required(cmd.Payload, "ip", "port", "start_date", "end_date")
	if err != nil {
		return h.reject(kind, cmd, err)
	}
	t, err := parseTarget(v)
	if err != nil {
		return h.reject(kind, cmd, err)
	}
	start, err := parseDate(v["start_date"], false)
	if err != nil {
		return h.reject(kind, cmd, err)
	}
	end, err := parseDate(v["end_date"], true)
	if err != nil {
		return h.reject(kind, cmd, err)
	}
	if start.After(end) {
		return h.reject(kind, cmd, invalidf("start_date %s is after end_date %s", v["start_date"], v["end_date"]))
	}

	gw, err := h.connect(ctx, t)
	if err != nil {
		return command.Failed(kind, detailConnectFailed)
	}
	defer h.closeSession(gw, t)

	logs, err := gw.ReadLogs(ctx, device.TimeRange{Start: start, End: end})
	if err != nil {
		h.logger.Warn("read logs failed", "command_id", cmd.ID, "address", t.address(), "error", err)
		return command.Failed(kind, "failed to read logs from the device")
	}
	if len(logs) == 0 {
		return command.Failed(kind, "no logs found in the requested range")
	}
	for i := range logs {
		if logs[i].DeviceHash == "" {
			logs[i].DeviceHash = t.address()
		}
	}
	h.logger.Info("logs read from device", "command_id", cmd.ID, "address", t.address(), "count", len(logs))

	if err := h.backend.SendLogs(ctx, logs); err != nil {
		h.logger.Warn("send logs failed", "command_id", cmd.ID, "error", err)
		return command.Failed(kind, "failed to send logs to API")
	}
	return command.Completed(kind, "logs sent to API successfully")
}
