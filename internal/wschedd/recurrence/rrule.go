package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// rruleRule expands an RFC 5545 recurrence rule. DTSTART is always taken
// from the definition's first start.
type rruleRule struct {
	option rrule.ROption
}

func newRRule(xData string) (Rule, error) {
	raw := strings.TrimSpace(xData)
	raw = strings.TrimPrefix(raw, "RRULE:")
	if raw == "" {
		return nil, fmt.Errorf("%w: empty rrule", ErrInvalidPayload)
	}
	opt, err := rrule.StrToROption(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if _, err := rrule.NewRRule(*opt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return rruleRule{option: *opt}, nil
}

func (r rruleRule) Starts(span Span) ([]time.Time, error) {
	loc := span.Location
	if loc == nil {
		loc = time.UTC
	}
	opt := r.option
	opt.Dtstart = span.First.In(loc)

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	after, before := span.after(), span.before()
	var starts []time.Time
	for _, start := range rule.Between(after, before, false) {
		if start.Before(span.First) {
			continue
		}
		starts = append(starts, start)
		if span.Limit > 0 && len(starts) > span.Limit {
			return nil, ErrTooManyOccurrences
		}
	}
	return starts, nil
}
