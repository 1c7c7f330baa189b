package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
	"github.com/wrale/wrale-scheduler/internal/wschedd/recurrence"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
	"github.com/wrale/wrale-scheduler/internal/wschedd/timerange"
)

// User-facing validation messages
const (
	msgInvalidPlayer    = "Player ID is invalid."
	msgInvalidDevice    = "Device ID is invalid."
	msgInvalidUser      = "User ID is invalid."
	msgInvalidDates     = "The start or end date is invalid."
	msgWindowTooLarge   = "The requested time window is too large."
	msgInvalidShowID    = "Show ID is invalid."
	msgInvalidPermID    = "Permission ID is invalid."
	msgShowNotFound     = "Show not found."
	msgPermNotFound     = "Permission not found."
	msgDeviceNotFound   = "Device not found."
	msgInvalidMode      = "The recurrence mode is not valid."
	msgInvalidXData     = "The recurrence data is not valid."
	msgInvalidStart     = "The start date is invalid."
	msgInvalidStop      = "The stop date is invalid."
	msgStopBeforeStart  = "The stop date must be after the start date."
	msgInvalidDuration  = "The duration is not valid."
	msgInvalidItemType  = "The item type is invalid."
	msgInvalidItemID    = "The item ID is invalid."
	msgItemNotFound     = "The selected item does not exist."
	msgTooManyInstances = "The schedule repeats too often to be checked."
	msgDescTooLong      = "The description is too long."
)

const maxDescription = 255

// parseID accepts a positive decimal identifier
func parseID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.ParseUint(raw, 10, 63)
	if err != nil || n == 0 {
		return 0, false
	}
	return int64(n), true
}

// maxInstant is the last second of year 9999
var maxInstant = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC).Unix()

// parseInstant accepts Unix seconds from the epoch up to maxInstant
func parseInstant(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.ParseUint(raw, 10, 63)
	if err != nil || int64(n) > maxInstant {
		return time.Time{}, false
	}
	return time.Unix(int64(n), 0).UTC(), true
}

func invalidID(msg, op string) error {
	return werrors.NewError(werrors.CodeInvalidID, msg, op, werrors.ErrInvalidInput)
}

func notFound(msg, op string, err error) error {
	if err == nil {
		err = werrors.ErrNotFound
	}
	return werrors.NewError(werrors.CodeNotFound, msg, op, err)
}

// timingFields are the raw schedule definition fields shared by shows and
// permissions
type timingFields struct {
	Mode     string
	XData    string
	Start    string
	Stop     string
	Duration schedule.DurationFields
}

// parseTiming validates the definition fields and checks that the
// expander can handle the resulting definition.
func (s *Service) parseTiming(f timingFields, op string) (schedule.Timing, error) {
	mode := recurrence.Mode(strings.ToLower(strings.TrimSpace(f.Mode)))
	if mode == "" {
		mode = recurrence.ModeOnce
	}
	if _, err := s.expander.Registry().Rule(mode, strings.TrimSpace(f.XData)); errors.Is(err, recurrence.ErrUnknownMode) {
		return schedule.Timing{}, werrors.Invalid(msgInvalidMode, op)
	}

	start, ok := parseInstant(f.Start)
	if !ok {
		return schedule.Timing{}, werrors.Invalid(msgInvalidStart, op)
	}

	components, err := timerange.ParseComponents(f.Duration.Days, f.Duration.Hours, f.Duration.Minutes, f.Duration.Seconds)
	if err != nil {
		return schedule.Timing{}, werrors.Invalid(msgInvalidDuration, op)
	}
	duration, err := components.Duration()
	if err != nil {
		return schedule.Timing{}, werrors.Invalid(msgInvalidDuration, op)
	}

	timing := schedule.Timing{
		Start:    start,
		Duration: duration,
		Mode:     mode,
	}
	if timing.Recurring() {
		timing.XData = strings.TrimSpace(f.XData)
		stop, ok := parseInstant(f.Stop)
		if !ok {
			return schedule.Timing{}, werrors.Invalid(msgInvalidStop, op)
		}
		timing.Stop = stop
	}

	if err := s.expander.Validate(timing.Definition()); err != nil {
		switch {
		case errors.Is(err, recurrence.ErrInvalidStop):
			return schedule.Timing{}, werrors.Invalid(msgStopBeforeStart, op)
		case errors.Is(err, timerange.ErrInvalidDuration):
			return schedule.Timing{}, werrors.Invalid(msgInvalidDuration, op)
		case errors.Is(err, recurrence.ErrUnknownMode):
			return schedule.Timing{}, werrors.Invalid(msgInvalidMode, op)
		default:
			return schedule.Timing{}, werrors.NewError(werrors.CodeInvalidInput, msgInvalidXData, op,
				errors.Join(werrors.ErrInvalidInput, err))
		}
	}
	return timing, nil
}

// requireDevice parses a device field and checks that the device exists.
// malformed is reported for unparsable input, missing for unknown devices.
func (s *Service) requireDevice(ctx context.Context, raw, malformed string, missing error, op string) (int64, error) {
	id, ok := parseID(raw)
	if !ok {
		return 0, invalidID(malformed, op)
	}
	exists, err := s.devices.Exists(ctx, id)
	if err != nil {
		return 0, s.internal(op, "failed to look up device", err)
	}
	if !exists {
		return 0, missing
	}
	return id, nil
}

// expandCandidate computes every occurrence of a definition within its own
// validity bounds
func (s *Service) expandCandidate(kind schedule.Kind, timing schedule.Timing, op string) ([]timerange.Range, timerange.Range, error) {
	def := timing.Definition()
	window := def.Bounds()
	occurrences, err := s.expander.Expand(def, window)
	if err != nil {
		if errors.Is(err, recurrence.ErrTooManyOccurrences) {
			return nil, window, werrors.NewError(werrors.CodeInvalidInput, msgTooManyInstances, op,
				errors.Join(werrors.ErrInvalidInput, err))
		}
		return nil, window, s.internal(op, "failed to expand schedule", err)
	}
	s.metrics.ObserveExpansion(kind, len(occurrences))
	return occurrences, window, nil
}
