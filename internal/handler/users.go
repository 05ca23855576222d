package handler

import (
	"context"

	"github.com/mattjoyce/biobridge/internal/backend"
	"github.com/mattjoyce/biobridge/internal/command"
	"github.com/mattjoyce/biobridge/internal/device"
)

type createUser struct{ base }

func (h *createUser) Kind() command.Kind { return command.KindCreateUser }

func (h *createUser) Handle(ctx context.Context, cmd command.Command) command.Outcome {
	kind := h.Kind()
	v, err := required(cmd.Payload, "ip", "port", "user_hash", "name", "device_hash")
	if err != nil {
		return h.reject(kind, cmd, err)
	}
	t, err := parseTarget(v)
	if err != nil {
		return h.reject(kind, cmd, err)
	}

	gw, err := h.connect(ctx, t)
	if err != nil {
		return command.Failed(kind, detailConnectFailed)
	}
	defer h.closeSession(gw, t)

	user := device.User{EnrollNumber: v["user_hash"], Name: v["name"], Enabled: true}
	if err := gw.CreateUser(ctx, user); err != nil {
		h.logger.Warn("create user on device failed", "command_id", cmd.ID, "user_hash", user.EnrollNumber, "error", err)
		return command.Failed(kind, "failed to create user on the device")
	}

	remote := backend.RemoteUser{
		Name:       v["name"],
		UserHash:   v["user_hash"],
		DeviceHash: v["device_hash"],
		QueueID:    cmd.ID,
	}
	if err := h.backend.CreateUserRemote(ctx, remote); err != nil {
		h.logger.Warn("create user on backend failed", "command_id", cmd.ID, "user_hash", remote.UserHash, "error", err)
		return command.Failed(kind, "can't send user to server")
	}
	return command.Completed(kind, "user created successfully")
}

type deleteUser struct{ base }

func (h *deleteUser) Kind() command.Kind { return command.KindDeleteUser }

func (h *deleteUser) Handle(ctx context.Context, cmd command.Command) command.Outcome {
	kind := h.Kind()
	v, err := required(cmd.Payload, "ip", "port", "user_hash")
	if err != nil {
		return h.reject(kind, cmd, err)
	}
	t, err := parseTarget(v)
	if err != nil {
		return h.reject(kind, cmd, err)
	}

	gw, err := h.connect(ctx, t)
	if err != nil {
		return command.Failed(kind, detailConnectFailed)
	}
	defer h.closeSession(gw, t)

	userHash := v["user_hash"]
	if err := gw.DeleteUser(ctx, userHash); err != nil {
		h.logger.Warn("delete user on device failed", "command_id", cmd.ID, "user_hash", userHash, "error", err)
		return command.Failed(kind, "failed to delete user on the device")
	}
	if err := h.backend.DeleteUserRemote(ctx, userHash); err != nil {
		h.logger.Warn("delete user on backend failed", "command_id", cmd.ID, "user_hash", userHash, "error", err)
		return command.Failed(kind, "can't delete user on server")
	}
	return command.Completed(kind, "user deleted successfully")
}
