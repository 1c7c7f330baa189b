package service

import (
	"context"
	"sort"
	"strings"

	"github.com/wrale/wrale-scheduler/internal/wschedd/access"
	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
	"github.com/wrale/wrale-scheduler/internal/wschedd/timerange"
)

// Shows lists every show occurrence on a device intersecting the window.
// The expansion is the one collision checks use, so what callers see is
// exactly what blocks their next write.
func (s *Service) Shows(ctx context.Context, actor *access.Actor, query schedule.ShowQuery) (result []schedule.ShowOccurrence, err error) {
	const op = "ScheduleService.Shows"
	defer func() { s.observe(op, err) }()

	if err := requireActor(actor, op); err != nil {
		return nil, err
	}
	return s.listShows(ctx, query, op)
}

// FriendlySchedule lists the show occurrences of a device for public
// display. It needs no actor; callers decide which fields to expose.
func (s *Service) FriendlySchedule(ctx context.Context, query schedule.ShowQuery) (result []schedule.ShowOccurrence, err error) {
	const op = "ScheduleService.FriendlySchedule"
	defer func() { s.observe(op, err) }()

	return s.listShows(ctx, query, op)
}

func (s *Service) listShows(ctx context.Context, query schedule.ShowQuery, op string) ([]schedule.ShowOccurrence, error) {
	deviceID, ok := parseID(query.Device)
	if !ok {
		return nil, invalidID(msgInvalidPlayer, op)
	}
	window, err := s.parseWindow(query.Start, query.End, op)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireDevice(ctx, query.Device, msgInvalidPlayer, invalidID(msgInvalidPlayer, op), op); err != nil {
		return nil, err
	}

	shows, err := s.repo.ListShows(ctx, schedule.ShowFilter{DeviceID: deviceID, Window: window})
	if err != nil {
		return nil, s.internal(op, "failed to list shows", err)
	}

	result := []schedule.ShowOccurrence{}
	for _, show := range shows {
		occurrences, err := s.expander.Expand(show.Definition(), window)
		if err != nil {
			return nil, s.internal(op, "failed to expand show", err)
		}
		for _, occ := range occurrences {
			result = append(result, schedule.ShowOccurrence{Show: show, Range: occ})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Range.Start.Before(result[j].Range.Start)
	})
	s.metrics.ObserveExpansion(schedule.KindShow, len(result))
	return result, nil
}

// Permissions lists permission occurrences on a device intersecting the
// window. Listing anyone's grants but one's own needs the management
// capability on the device; an empty UserID lists every grantee.
func (s *Service) Permissions(ctx context.Context, actor *access.Actor, query schedule.PermissionQuery) (result []schedule.PermissionOccurrence, err error) {
	const op = "ScheduleService.Permissions"
	defer func() { s.observe(op, err) }()

	if err := requireActor(actor, op); err != nil {
		return nil, err
	}
	deviceID, ok := parseID(query.Device)
	if !ok {
		return nil, invalidID(msgInvalidPlayer, op)
	}

	var userID int64
	if strings.TrimSpace(query.UserID) != "" {
		if userID, ok = parseID(query.UserID); !ok {
			return nil, invalidID(msgInvalidUser, op)
		}
	}
	if userID != actor.UserID {
		if d := s.gate.CanManagePermissions(actor, deviceID); !d.Allowed {
			return nil, werrors.Forbidden(d.Reason, op)
		}
	}

	window, err := s.parseWindow(query.Start, query.End, op)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireDevice(ctx, query.Device, msgInvalidDevice, invalidID(msgInvalidDevice, op), op); err != nil {
		return nil, err
	}

	permissions, err := s.repo.ListPermissions(ctx, schedule.PermissionFilter{DeviceID: deviceID, UserID: userID, Window: window})
	if err != nil {
		return nil, s.internal(op, "failed to list permissions", err)
	}

	result = []schedule.PermissionOccurrence{}
	for _, p := range permissions {
		occurrences, err := s.expander.Expand(p.Definition(), window)
		if err != nil {
			return nil, s.internal(op, "failed to expand permission", err)
		}
		for _, occ := range occurrences {
			result = append(result, schedule.PermissionOccurrence{Permission: p, Range: occ})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Range.Start.Before(result[j].Range.Start)
	})
	s.metrics.ObserveExpansion(schedule.KindPermission, len(result))
	return result, nil
}

// parseWindow validates the start and end of a listing request
func (s *Service) parseWindow(rawStart, rawEnd, op string) (timerange.Range, error) {
	start, okStart := parseInstant(rawStart)
	end, okEnd := parseInstant(rawEnd)
	if !okStart || !okEnd || !start.Before(end) {
		return timerange.Range{}, werrors.Invalid(msgInvalidDates, op)
	}
	window := timerange.Between(start, end)
	if window.Duration > s.maxWindow {
		return timerange.Range{}, werrors.Invalid(msgWindowTooLarge, op)
	}
	return window, nil
}
