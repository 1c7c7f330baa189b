package recurrence

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a Rule from a definition's mode payload.
type Factory func(xData string) (Rule, error)

// Registry maps modes to rule factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[Mode]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Mode]Factory)}
}

// DefaultRegistry returns a registry holding every built-in mode.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ModeOnce, func(string) (Rule, error) { return onceRule{}, nil })
	r.Register(ModeDaily, fixedStep(0, 1))
	r.Register(ModeWeekly, fixedStep(0, 7))
	r.Register(ModeMonthly, fixedStep(1, 0))
	r.Register(ModeXDays, intervalStep(0, 1))
	r.Register(ModeXWeeks, intervalStep(0, 7))
	r.Register(ModeXMonths, intervalStep(1, 0))
	r.Register(ModeRRule, newRRule)
	return r
}

// Register adds or replaces the factory for mode.
func (r *Registry) Register(mode Mode, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[mode] = f
}

// Rule resolves mode and parses its payload.
func (r *Registry) Rule(mode Mode, xData string) (Rule, error) {
	r.mu.RLock()
	f, ok := r.factories[mode]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return f(xData)
}

// Modes lists the registered modes in lexical order.
func (r *Registry) Modes() []Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	modes := make([]Mode, 0, len(r.factories))
	for m := range r.factories {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}
