package service

import (
	"context"
	"errors"
	"strings"

	"github.com/wrale/wrale-scheduler/internal/wschedd/access"
	"github.com/wrale/wrale-scheduler/internal/wschedd/collision"
	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
	"github.com/wrale/wrale-scheduler/internal/wschedd/events"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
)

// GetShow retrieves a one-off or recurring show. Any authenticated user may
// read shows.
func (s *Service) GetShow(ctx context.Context, actor *access.Actor, id string, recurring bool) (show *schedule.Show, err error) {
	const op = "ScheduleService.GetShow"
	defer func() { s.observe(op, err) }()

	if err := requireActor(actor, op); err != nil {
		return nil, err
	}
	showID, ok := parseID(id)
	if !ok {
		return nil, invalidID(msgInvalidShowID, op)
	}
	return s.findShow(ctx, s.repo, showID, recurring, op)
}

func (s *Service) findShow(ctx context.Context, repo schedule.ShowRepository, id int64, recurring bool, op string) (*schedule.Show, error) {
	show, err := repo.FindShow(ctx, id, recurring)
	if err != nil {
		if werrors.IsNotFound(err) {
			return nil, notFound(msgShowNotFound, op, err)
		}
		return nil, s.internal(op, "failed to load show", err)
	}
	return show, nil
}

// SaveShow creates a show, or edits the show named by req.ID. Edits are
// allowed for the owner and for schedule administrators of the show's
// device, and keep the original owner.
func (s *Service) SaveShow(ctx context.Context, actor *access.Actor, req schedule.SaveShowRequest) (saved *schedule.Show, err error) {
	const op = "ScheduleService.SaveShow"
	defer func() { s.observe(op, err) }()

	if err := requireActor(actor, op); err != nil {
		return nil, err
	}

	// Received: resolve the edited show first so ownership is settled
	// before anything else is disclosed
	var original *schedule.Show
	if strings.TrimSpace(req.ID) != "" {
		showID, ok := parseID(req.ID)
		if !ok {
			return nil, invalidID(msgInvalidShowID, op)
		}
		original, err = s.findShow(ctx, s.repo, showID, req.EditRecurring, op)
		if err != nil {
			return nil, err
		}
		if d := s.gate.CanModifyShow(actor, original); !d.Allowed {
			return nil, werrors.Forbidden(d.Reason, op)
		}
	}

	// Validated
	show, err := s.validateShow(ctx, req, op)
	if err != nil {
		return nil, err
	}
	show.UserID = actor.UserID
	if original != nil {
		show.ID = original.ID
		show.UserID = original.UserID
	}

	occurrences, window, err := s.expandCandidate(schedule.KindShow, show.Timing, op)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithDeviceLock(ctx, show.DeviceID, func(repo schedule.Repository) error {
		var editing schedule.Ref
		if original != nil {
			// The edited show may have been removed while we waited
			if _, err := s.findShow(ctx, repo, original.ID, original.Recurring(), op); err != nil {
				return err
			}
			editing = original.Ref()
		}

		// Authorized
		grants, err := repo.ListPermissions(ctx, schedule.PermissionFilter{DeviceID: show.DeviceID, Window: window})
		if err != nil {
			return s.internal(op, "failed to load permissions", err)
		}
		decision, err := s.gate.AuthorizeShow(actor, show.DeviceID, occurrences, grants, window)
		if err != nil {
			return s.internal(op, "failed to authorize show", err)
		}
		if !decision.Allowed {
			s.logger.Info("show placement denied",
				"operation", op,
				"userID", actor.UserID,
				"deviceID", show.DeviceID,
				"uncoveredStart", decision.Uncovered.Start,
			)
			return werrors.Forbidden(decision.Reason, op)
		}

		// CollisionChecked
		existing, err := repo.ListShows(ctx, schedule.ShowFilter{DeviceID: show.DeviceID, Window: window})
		if err != nil {
			return s.internal(op, "failed to load shows", err)
		}
		entries := make([]collision.Entry, len(existing))
		for i, e := range existing {
			entries[i] = collision.ShowEntry(e)
		}
		candidate := collision.Candidate{
			Kind:        schedule.KindShow,
			Editing:     editing,
			DeviceID:    show.DeviceID,
			Occurrences: occurrences,
		}
		if err := s.checker.Check(candidate, entries, window); err != nil {
			return conflictError(err, op)
		}

		// Committed
		if err := repo.SaveShow(ctx, show); err != nil {
			return s.internal(op, "failed to save show", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.internal(op, "failed to save show", err)
	}

	s.logger.Info("show saved",
		"operation", op,
		"showID", show.ID,
		"deviceID", show.DeviceID,
		"userID", actor.UserID,
		"recurring", show.Recurring(),
		"edit", original != nil,
	)
	s.publish(ctx, events.Event{
		Type:      events.ShowSaved,
		DeviceID:  show.DeviceID,
		EntryID:   show.ID,
		Recurring: show.Recurring(),
		UserID:    actor.UserID,
	})
	if original != nil && original.DeviceID != show.DeviceID {
		// The show left its previous device
		s.publish(ctx, events.Event{
			Type:      events.ShowDeleted,
			DeviceID:  original.DeviceID,
			EntryID:   show.ID,
			Recurring: original.Recurring(),
			UserID:    actor.UserID,
		})
	}
	return show, nil
}

func (s *Service) validateShow(ctx context.Context, req schedule.SaveShowRequest, op string) (*schedule.Show, error) {
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

	itemType := schedule.ItemType(strings.ToLower(strings.TrimSpace(req.ItemType)))
	if !itemType.Valid() {
		return nil, werrors.Invalid(msgInvalidItemType, op)
	}
	var itemID int64
	if itemType.NeedsID() {
		var ok bool
		if itemID, ok = parseID(req.ItemID); !ok {
			return nil, invalidID(msgInvalidItemID, op)
		}
	}
	exists, err := s.content.ItemExists(ctx, itemType, itemID)
	if err != nil {
		return nil, s.internal(op, "failed to look up content item", err)
	}
	if !exists {
		return nil, werrors.Invalid(msgItemNotFound, op)
	}

	return &schedule.Show{
		DeviceID: deviceID,
		Timing:   timing,
		ItemType: itemType,
		ItemID:   itemID,
	}, nil
}

// DeleteShow removes a show. Owners may always delete their shows; anyone
// else needs the administrative capability on the show's device.
func (s *Service) DeleteShow(ctx context.Context, actor *access.Actor, id string, recurring bool) (err error) {
	const op = "ScheduleService.DeleteShow"
	defer func() { s.observe(op, err) }()

	if err := requireActor(actor, op); err != nil {
		return err
	}
	showID, ok := parseID(id)
	if !ok {
		return invalidID(msgInvalidShowID, op)
	}
	show, err := s.findShow(ctx, s.repo, showID, recurring, op)
	if err != nil {
		return err
	}
	if d := s.gate.CanModifyShow(actor, show); !d.Allowed {
		return werrors.Forbidden(d.Reason, op)
	}

	if err := s.repo.DeleteShow(ctx, show.Ref()); err != nil {
		if werrors.IsNotFound(err) {
			return notFound(msgShowNotFound, op, err)
		}
		return s.internal(op, "failed to delete show", err)
	}

	s.logger.Info("show deleted",
		"operation", op,
		"showID", show.ID,
		"deviceID", show.DeviceID,
		"userID", actor.UserID,
	)
	s.publish(ctx, events.Event{
		Type:      events.ShowDeleted,
		DeviceID:  show.DeviceID,
		EntryID:   show.ID,
		Recurring: show.Recurring(),
		UserID:    actor.UserID,
	})
	return nil
}

// conflictError turns a collision into a Conflict error carrying the
// blocking kind's reason
func conflictError(err error, op string) error {
	var c *collision.Conflict
	if errors.As(err, &c) {
		return werrors.NewError(werrors.CodeConflict, c.Reason(), op, c)
	}
	return err
}
