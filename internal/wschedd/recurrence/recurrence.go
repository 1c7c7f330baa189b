// Package recurrence expands schedule definitions into concrete occurrences.
//
// A definition names a recurrence Mode and carries a mode-specific payload
// (XData). Modes are resolved through a Registry of Rule factories so new
// recurrence grammars can be added without touching callers. Occurrences are
// never stored; they are recomputed for every window a caller asks about.
package recurrence

import (
	"errors"
	"time"

	"github.com/wrale/wrale-scheduler/internal/wschedd/timerange"
)

// Mode selects the recurrence strategy of a definition.
type Mode string

// Built-in modes
const (
	ModeOnce    Mode = "once"
	ModeDaily   Mode = "daily"
	ModeWeekly  Mode = "weekly"
	ModeMonthly Mode = "monthly"
	ModeXDays   Mode = "xdays"
	ModeXWeeks  Mode = "xweeks"
	ModeXMonths Mode = "xmonths"
	ModeRRule   Mode = "rrule"
)

var (
	// ErrUnknownMode is returned for a mode with no registered rule
	ErrUnknownMode = errors.New("recurrence: unknown mode")
	// ErrInvalidPayload is returned when XData cannot be parsed for the mode
	ErrInvalidPayload = errors.New("recurrence: invalid mode data")
	// ErrInvalidStop is returned when a recurring definition does not stop after it starts
	ErrInvalidStop = errors.New("recurrence: stop must be after start")
	// ErrInvalidWindow is returned for an empty or inverted expansion window
	ErrInvalidWindow = errors.New("recurrence: invalid window")
	// ErrTooManyOccurrences is returned when an expansion exceeds the configured limit
	ErrTooManyOccurrences = errors.New("recurrence: too many occurrences")
)

// Definition describes when a schedule entry happens.
type Definition struct {
	// Range is the first occurrence
	Range timerange.Range
	Mode  Mode
	XData string
	// Stop is the exclusive validity bound of a recurring definition.
	// Occurrences starting at or after Stop are never produced.
	Stop time.Time
}

// Recurring reports whether the definition repeats.
func (d Definition) Recurring() bool {
	return d.Mode != "" && d.Mode != ModeOnce
}

// Bounds returns the span any occurrence of the definition can touch.
func (d Definition) Bounds() timerange.Range {
	if !d.Recurring() || d.Stop.IsZero() {
		return d.Range
	}
	return timerange.Between(d.Range.Start, d.Stop.Add(d.Range.Duration))
}

// Span is the input handed to a Rule for one expansion.
type Span struct {
	// First is the start of the first occurrence
	First    time.Time
	Duration time.Duration
	// Until is the exclusive bound on occurrence starts
	Until time.Time
	// Window is the range occurrences must intersect
	Window timerange.Range
	// Location is the zone calendar arithmetic happens in
	Location *time.Location
	// Limit caps the number of starts; zero means unlimited
	Limit int
}

// after returns the instant an occurrence start must be strictly later than
// for the occurrence to reach into the window.
func (s Span) after() time.Time {
	return s.Window.Start.Add(-s.Duration)
}

// before returns the exclusive upper bound on occurrence starts.
func (s Span) before() time.Time {
	end := s.Window.End()
	if !s.Until.IsZero() && s.Until.Before(end) {
		return s.Until
	}
	return end
}

// Rule produces occurrence starts for one recurrence mode.
type Rule interface {
	// Starts returns, in ascending order, every start s with
	// First <= s < Until whose range [s, s+Duration) intersects Window.
	Starts(span Span) ([]time.Time, error)
}
