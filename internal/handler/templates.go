package handler

import (
	"context"

	"github.com/mattjoyce/biobridge/internal/backend"
	"github.com/mattjoyce/biobridge/internal/command"
	"github.com/mattjoyce/biobridge/internal/device"
)

// noun names the template family in outcome details.
func noun(face bool) string {
	if face {
		return "face"
	}
	return "finger"
}

// getTemplates reads every template slot of a user and uploads them.
type getTemplates struct {
	base
	kind command.Kind
	face bool
}

func (h *getTemplates) Kind() command.Kind { return h.kind }

func (h *getTemplates) Handle(ctx context.Context, cmd command.Command) command.Outcome {
	kind := h.kind
	v, err := required(cmd.Payload, "ip", "port", "user_hash")
	if err != nil {
		return h.reject(kind, cmd, err)
	}
	t, err := parseTarget(v)
	if err != nil {
		return h.reject(kind, cmd, err)
	}
	deviceHash, ok := cmd.Payload.Get("device_hash")
	if !ok {
		deviceHash = t.address()
	}

	gw, err := h.connect(ctx, t)
	if err != nil {
		return command.Failed(kind, detailConnectFailed)
	}
	defer h.closeSession(gw, t)

	userHash := v["user_hash"]
	var templates []device.Template
	if h.face {
		templates, err = gw.ReadFaceTemplates(ctx, userHash)
	} else {
		templates, err = gw.ReadFingerTemplates(ctx, userHash)
	}
	if err != nil {
		h.logger.Warn("read templates failed", "command_id", cmd.ID, "kind", string(kind), "user_hash", userHash, "error", err)
		return command.Failedf(kind, "failed to read %ss from the device", noun(h.face))
	}
	if len(templates) == 0 {
		return command.Failedf(kind, "no %s templates found for user", noun(h.face))
	}

	batch := backend.TemplateBatch{UserHash: userHash, DeviceHash: deviceHash, Templates: templates}
	if h.face {
		err = h.backend.SendFaceTemplates(ctx, batch)
	} else {
		err = h.backend.SendFingerTemplates(ctx, batch)
	}
	if err != nil {
		h.logger.Warn("send templates failed", "command_id", cmd.ID, "kind", string(kind), "error", err)
		return command.Failedf(kind, "failed to send %ss to API", noun(h.face))
	}
	return command.Completed(kind, noun(h.face)+"s sent to API successfully")
}

// setTemplate writes a single template slot on the reader.
type setTemplate struct {
	base
	kind command.Kind
	face bool
}

func (h *setTemplate) Kind() command.Kind { return h.kind }

func (h *setTemplate) Handle(ctx context.Context, cmd command.Command) command.Outcome {
	kind := h.kind
	indexKey, dataKey := "finger_index", "finger_data"
	if h.face {
		indexKey, dataKey = "face_index", "face_data"
	}

	v, err := required(cmd.Payload, "ip", "port", "user_hash", indexKey, dataKey)
	if err != nil {
		return h.reject(kind, cmd, err)
	}
	t, err := parseTarget(v)
	if err != nil {
		return h.reject(kind, cmd, err)
	}
	index, err := parseIndex(v[indexKey])
	if err != nil {
		return h.reject(kind, cmd, err)
	}

	gw, err := h.connect(ctx, t)
	if err != nil {
		return command.Failed(kind, detailConnectFailed)
	}
	defer h.closeSession(gw, t)

	userHash := v["user_hash"]
	if h.face {
		err = gw.WriteFaceTemplate(ctx, userHash, index, v[dataKey])
	} else {
		err = gw.WriteFingerTemplate(ctx, userHash, index, v[dataKey])
	}
	if err != nil {
		h.logger.Warn("write template failed", "command_id", cmd.ID, "kind", string(kind), "user_hash", userHash, "index", index, "error", err)
		return command.Failedf(kind, "user %s insertion failed on device", noun(h.face))
	}
	return command.Completedf(kind, "user %s inserted to device", noun(h.face))
}
