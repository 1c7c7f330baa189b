package recurrence

import (
	"time"

	"github.com/wrale/wrale-scheduler/internal/wschedd/timerange"
)

// DefaultLimit is the default cap on occurrences produced by one expansion.
const DefaultLimit = 10000

// Expander turns definitions into the occurrences that touch a window.
type Expander struct {
	registry *Registry
	location *time.Location
	limit    int
}

// Option configures an Expander
type Option func(*Expander)

// WithRegistry sets the mode registry
func WithRegistry(r *Registry) Option {
	return func(e *Expander) { e.registry = r }
}

// WithLocation sets the zone calendar steps are computed in
func WithLocation(loc *time.Location) Option {
	return func(e *Expander) { e.location = loc }
}

// WithLimit caps the occurrences of a single expansion; zero disables the cap
func WithLimit(n int) Option {
	return func(e *Expander) { e.limit = n }
}

// NewExpander creates an expander using the default registry, UTC and
// DefaultLimit unless overridden.
func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		registry: DefaultRegistry(),
		location: time.UTC,
		limit:    DefaultLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the expander's mode registry.
func (e *Expander) Registry() *Registry {
	return e.registry
}

// Validate checks that def can be expanded.
func (e *Expander) Validate(def Definition) error {
	if !def.Range.Valid() {
		return timerange.ErrInvalidDuration
	}
	mode := def.Mode
	if mode == "" {
		mode = ModeOnce
	}
	if _, err := e.registry.Rule(mode, def.XData); err != nil {
		return err
	}
	if def.Recurring() && !def.Stop.After(def.Range.Start) {
		return ErrInvalidStop
	}
	return nil
}

// Expand returns the occurrences of def that intersect window, ordered by
// start. A one-off definition yields its own range when it intersects.
// Recurring definitions yield nothing at or beyond their Stop.
func (e *Expander) Expand(def Definition, window timerange.Range) ([]timerange.Range, error) {
	if !window.Valid() {
		return nil, ErrInvalidWindow
	}
	if !def.Range.Valid() {
		return nil, timerange.ErrInvalidDuration
	}
	if !def.Recurring() {
		if timerange.Overlaps(def.Range, window) {
			return []timerange.Range{def.Range}, nil
		}
		return nil, nil
	}

	rule, err := e.registry.Rule(def.Mode, def.XData)
	if err != nil {
		return nil, err
	}
	starts, err := rule.Starts(Span{
		First:    def.Range.Start,
		Duration: def.Range.Duration,
		Until:    def.Stop,
		Window:   window,
		Location: e.location,
		Limit:    e.limit,
	})
	if err != nil {
		return nil, err
	}

	loc := def.Range.Start.Location()
	occurrences := make([]timerange.Range, 0, len(starts))
	for _, start := range starts {
		occurrences = append(occurrences, timerange.New(start.In(loc), def.Range.Duration))
	}
	return occurrences, nil
}
