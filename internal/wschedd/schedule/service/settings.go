package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/wrale/wrale-scheduler/internal/wschedd/access"
	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
	"github.com/wrale/wrale-scheduler/internal/wschedd/settings"
)

// SetLastDevice remembers the device the actor last viewed in scope
func (s *Service) SetLastDevice(ctx context.Context, actor *access.Actor, scope schedule.SettingScope, device string) (err error) {
	const op = "ScheduleService.SetLastDevice"
	defer func() { s.observe(op, err) }()

	if err := requireActor(actor, op); err != nil {
		return err
	}
	if !scope.Valid() {
		return werrors.Invalid("Unknown setting scope.", op)
	}
	missing := notFound(msgDeviceNotFound, op, nil)
	deviceID, err := s.requireDevice(ctx, device, msgDeviceNotFound, missing, op)
	if err != nil {
		if werrors.IsInvalidInput(err) {
			return missing
		}
		return err
	}

	if err := s.settings.Set(ctx, actor.UserID, scope.SettingKey(), strconv.FormatInt(deviceID, 10)); err != nil {
		return s.internal(op, "failed to store setting", err)
	}
	return nil
}

// LastDevice returns the device remembered by SetLastDevice
func (s *Service) LastDevice(ctx context.Context, actor *access.Actor, scope schedule.SettingScope) (deviceID int64, err error) {
	const op = "ScheduleService.LastDevice"
	defer func() { s.observe(op, err) }()

	if err := requireActor(actor, op); err != nil {
		return 0, err
	}
	if !scope.Valid() {
		return 0, werrors.Invalid("Unknown setting scope.", op)
	}

	msg := "Last schedule device not found."
	if scope == schedule.ScopePermissions {
		msg = "Last schedule permissions device not found."
	}

	value, err := s.settings.Get(ctx, actor.UserID, scope.SettingKey())
	if errors.Is(err, settings.ErrNotFound) {
		return 0, notFound(msg, op, nil)
	}
	if err != nil {
		return 0, s.internal(op, "failed to read setting", err)
	}
	id, ok := parseID(value)
	if !ok {
		return 0, notFound(msg, op, nil)
	}
	return id, nil
}
