package http

import (
	"time"

	"github.com/wrale/wrale-scheduler/api/types/v1alpha1"
	"github.com/wrale/wrale-scheduler/internal/wschedd/device"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
	"github.com/wrale/wrale-scheduler/internal/wschedd/timerange"
)

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

func toShow(s *schedule.Show) v1alpha1.Show {
	return v1alpha1.Show{
		ID:        s.ID,
		UserID:    s.UserID,
		DeviceID:  s.DeviceID,
		Mode:      string(s.Mode),
		XData:     s.XData,
		Recurring: s.Recurring(),
		Start:     s.Start.Unix(),
		Duration:  seconds(s.Duration),
		Stop:      unixOrZero(s.Stop),
		ItemType:  string(s.ItemType),
		ItemID:    s.ItemID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toPermission(p *schedule.Permission) v1alpha1.Permission {
	return v1alpha1.Permission{
		ID:          p.ID,
		UserID:      p.UserID,
		DeviceID:    p.DeviceID,
		Description: p.Description,
		Mode:        string(p.Mode),
		XData:       p.XData,
		Recurring:   p.Recurring(),
		Start:       p.Start.Unix(),
		Duration:    seconds(p.Duration),
		Stop:        unixOrZero(p.Stop),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func occurrence(kind schedule.Kind, timing schedule.Timing, r timerange.Range) v1alpha1.Occurrence {
	return v1alpha1.Occurrence{
		Kind:       string(kind),
		Recurring:  timing.Recurring(),
		Start:      r.Start.Unix(),
		Duration:   seconds(r.Duration),
		Mode:       string(timing.Mode),
		XData:      timing.XData,
		FirstStart: timing.Start.Unix(),
		Stop:       unixOrZero(timing.Stop),
	}
}

func toFriendlySchedule(in []schedule.ShowOccurrence) []v1alpha1.FriendlyShow {
	out := make([]v1alpha1.FriendlyShow, 0, len(in))
	for _, o := range in {
		out = append(out, v1alpha1.FriendlyShow{
			Start:     o.Range.Start.Unix(),
			End:       o.Range.End().Unix(),
			Duration:  seconds(o.Range.Duration),
			Recurring: o.Show.Recurring(),
			ItemType:  string(o.Show.ItemType),
			ItemID:    o.Show.ItemID,
		})
	}
	return out
}

func toShowOccurrences(in []schedule.ShowOccurrence) []v1alpha1.Occurrence {
	out := make([]v1alpha1.Occurrence, 0, len(in))
	for _, o := range in {
		v := occurrence(schedule.KindShow, o.Show.Timing, o.Range)
		v.ID = o.Show.ID
		v.UserID = o.Show.UserID
		v.DeviceID = o.Show.DeviceID
		v.ItemType = string(o.Show.ItemType)
		v.ItemID = o.Show.ItemID
		out = append(out, v)
	}
	return out
}

func toPermissionOccurrences(in []schedule.PermissionOccurrence) []v1alpha1.Occurrence {
	out := make([]v1alpha1.Occurrence, 0, len(in))
	for _, o := range in {
		v := occurrence(schedule.KindPermission, o.Permission.Timing, o.Range)
		v.ID = o.Permission.ID
		v.UserID = o.Permission.UserID
		v.DeviceID = o.Permission.DeviceID
		v.Description = o.Permission.Description
		out = append(out, v)
	}
	return out
}

func toDevice(d *device.Device) v1alpha1.Device {
	return v1alpha1.Device{
		ID:       d.ID,
		Name:     d.Name,
		SiteID:   d.Location.SiteID,
		Zone:     d.Location.Zone,
		Position: d.Location.Position,
	}
}

func durationFields(days, hours, minutes, secs string) schedule.DurationFields {
	return schedule.DurationFields{Days: days, Hours: hours, Minutes: minutes, Seconds: secs}
}

func fromSaveShow(req v1alpha1.SaveShowRequest) schedule.SaveShowRequest {
	return schedule.SaveShowRequest{
		ID:            req.ID,
		EditRecurring: req.EditRecurring,
		Device:        req.DeviceID,
		Mode:          req.Mode,
		XData:         req.XData,
		Start:         req.Start,
		Stop:          req.Stop,
		Duration:      durationFields(req.DurationDays, req.DurationHours, req.DurationMinutes, req.DurationSeconds),
		ItemType:      req.ItemType,
		ItemID:        req.ItemID,
	}
}

func fromSavePermission(req v1alpha1.SavePermissionRequest) schedule.SavePermissionRequest {
	return schedule.SavePermissionRequest{
		ID:            req.ID,
		EditRecurring: req.EditRecurring,
		Device:        req.DeviceID,
		UserID:        req.UserID,
		Mode:          req.Mode,
		XData:         req.XData,
		Start:         req.Start,
		Stop:          req.Stop,
		Duration:      durationFields(req.DurationDays, req.DurationHours, req.DurationMinutes, req.DurationSeconds),
		Description:   req.Description,
	}
}
