package service

import (
	"context"
	"strings"

	"github.com/wrale/wrale-scheduler/internal/wschedd/access"
	"github.com/wrale/wrale-scheduler/internal/wschedd/authz"
	"github.com/wrale/wrale-scheduler/internal/wschedd/collision"
	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
	"github.com/wrale/wrale-scheduler/internal/wschedd/events"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
)

// GetPermission retrieves a permission grant. The caller needs the
// management capability on the grant's device.
func (s *Service) GetPermission(ctx context.Context, actor *access.Actor, id string, recurring bool) (permission *schedule.Permission, err error) {
	const op = "ScheduleService.GetPermission"
	defer func() { s.observe(op, err) }()

	if err := requireActor(actor, op); err != nil {
		return nil, err
	}
	permID, ok := parseID(id)
	if !ok {
		return nil, invalidID(msgInvalidPermID, op)
	}
	permission, err = s.findPermission(ctx, s.repo, actor, permID, recurring, op)
	if err != nil {
		return nil, err
	}
	if d := s.gate.CanManagePermissions(actor, permission.DeviceID); !d.Allowed {
		return nil, werrors.Forbidden(d.Reason, op)
	}
	return permission, nil
}

// findPermission loads a grant. Callers who cannot manage permissions on
// any device are refused before learning whether the grant exists.
func (s *Service) findPermission(ctx context.Context, repo schedule.PermissionRepository, actor *access.Actor, id int64, recurring bool, op string) (*schedule.Permission, error) {
	permission, err := repo.FindPermission(ctx, id, recurring)
	if err != nil {
		if !werrors.IsNotFound(err) {
			return nil, s.internal(op, "failed to load permission", err)
		}
		if !actor.CanAnywhere(access.ManageSchedulePermissions) {
			return nil, werrors.Forbidden(authz.ReasonNoCapability, op)
		}
		return nil, notFound(msgPermNotFound, op, err)
	}
	return permission, nil
}

// SavePermission creates a permission grant, or edits the grant named by
// req.ID. The caller needs the management capability on the target device
// and, when editing, on the grant's current device.
func (s *Service) SavePermission(ctx context.Context, actor *access.Actor, req schedule.SavePermissionRequest) (saved *schedule.Permission, err error) {
	const op = "ScheduleService.SavePermission"
	defer func() { s.observe(op, err) }()

	if err := requireActor(actor, op); err != nil {
		return nil, err
	}

	var original *schedule.Permission
	if strings.TrimSpace(req.ID) != "" {
		permID, ok := parseID(req.ID)
		if !ok {
			return nil, invalidID(msgInvalidPermID, op)
		}
		original, err = s.findPermission(ctx, s.repo, actor, permID, req.EditRecurring, op)
		if err != nil {
			return nil, err
		}
		if d := s.gate.CanManagePermissions(actor, original.DeviceID); !d.Allowed {
			return nil, werrors.Forbidden(d.Reason, op)
		}
	}

	permission, err := s.validatePermission(ctx, req, op)
	if err != nil {
		return nil, err
	}

	// Capability before collision so refused callers learn nothing about
	// existing grants
	if d := s.gate.CanManagePermissions(actor, permission.DeviceID); !d.Allowed {
		return nil, werrors.Forbidden(d.Reason, op)
	}
	if original != nil {
		permission.ID = original.ID
	}

	occurrences, window, err := s.expandCandidate(schedule.KindPermission, permission.Timing, op)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithDeviceLock(ctx, permission.DeviceID, func(repo schedule.Repository) error {
		var editing schedule.Ref
		if original != nil {
			if _, err := s.findPermission(ctx, repo, actor, original.ID, original.Recurring(), op); err != nil {
				return err
			}
			editing = original.Ref()
		}

		existing, err := repo.ListPermissions(ctx, schedule.PermissionFilter{DeviceID: permission.DeviceID, Window: window})
		if err != nil {
			return s.internal(op, "failed to load permissions", err)
		}
		entries := make([]collision.Entry, len(existing))
		for i, e := range existing {
			entries[i] = collision.PermissionEntry(e)
		}
		candidate := collision.Candidate{
			Kind:        schedule.KindPermission,
			Editing:     editing,
			DeviceID:    permission.DeviceID,
			Occurrences: occurrences,
		}
		if err := s.checker.Check(candidate, entries, window); err != nil {
			return conflictError(err, op)
		}

		if err := repo.SavePermission(ctx, permission); err != nil {
			return s.internal(op, "failed to save permission", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.internal(op, "failed to save permission", err)
	}

	s.logger.Info("permission saved",
		"operation", op,
		"permissionID", permission.ID,
		"deviceID", permission.DeviceID,
		"granteeID", permission.UserID,
		"recurring", permission.Recurring(),
		"edit", original != nil,
	)
	s.publish(ctx, events.Event{
		Type:      events.PermissionSaved,
		DeviceID:  permission.DeviceID,
		EntryID:   permission.ID,
		Recurring: permission.Recurring(),
		UserID:    actor.UserID,
	})
	if original != nil && original.DeviceID != permission.DeviceID {
		s.publish(ctx, events.Event{
			Type:      events.PermissionDeleted,
			DeviceID:  original.DeviceID,
			EntryID:   permission.ID,
			Recurring: original.Recurring(),
			UserID:    actor.UserID,
		})
	}
	return permission, nil
}

func (s *Service) validatePermission(ctx context.Context, req schedule.SavePermissionRequest, op string) (*schedule.Permission, error) {
	userID, ok := parseID(req.UserID)
	if !ok {
		return nil, invalidID(msgInvalidUser, op)
	}
	deviceID, err := s.requireDevice(ctx, req.Device, msgInvalidDevice, notFound(msgDeviceNotFound, op, nil), op)
	if err != nil {
		return nil, err
	}

	timing, err := s.parseTiming(timingFields{
		Mode:     req.Mode,
		XData:    req.XData,
		Start:    req.Start,
		Stop:     req.Stop,
		Duration: req.Duration,
	}, op)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(req.Description)
	if len(description) > maxDescription {
		return nil, werrors.Invalid(msgDescTooLong, op)
	}

	return &schedule.Permission{
		UserID:      userID,
		DeviceID:    deviceID,
		Description: description,
		Timing:      timing,
	}, nil
}

// DeletePermission removes a permission grant. The caller needs the
// management capability on the grant's device.
func (s *Service) DeletePermission(ctx context.Context, actor *access.Actor, id string, recurring bool) (err error) {
	const op = "ScheduleService.DeletePermission"
	defer func() { s.observe(op, err) }()

	if err := requireActor(actor, op); err != nil {
		return err
	}
	permID, ok := parseID(id)
	if !ok {
		return invalidID(msgInvalidPermID, op)
	}
	permission, err := s.findPermission(ctx, s.repo, actor, permID, recurring, op)
	if err != nil {
		return err
	}
	if d := s.gate.CanManagePermissions(actor, permission.DeviceID); !d.Allowed {
		return werrors.Forbidden(d.Reason, op)
	}

	if err := s.repo.DeletePermission(ctx, permission.Ref()); err != nil {
		if werrors.IsNotFound(err) {
			return notFound(msgPermNotFound, op, err)
		}
		return s.internal(op, "failed to delete permission", err)
	}

	s.logger.Info("permission deleted",
		"operation", op,
		"permissionID", permission.ID,
		"deviceID", permission.DeviceID,
		"userID", actor.UserID,
	)
	s.publish(ctx, events.Event{
		Type:      events.PermissionDeleted,
		DeviceID:  permission.DeviceID,
		EntryID:   permission.ID,
		Recurring: permission.Recurring(),
		UserID:    actor.UserID,
	})
	return nil
}
