package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// maxInterval bounds the x in xdays/xweeks/xmonths.
const maxInterval = 1000

type onceRule struct{}

func (onceRule) Starts(span Span) ([]time.Time, error) {
	if span.First.After(span.after()) && span.First.Before(span.Window.End()) {
		return []time.Time{span.First}, nil
	}
	return nil, nil
}

// stepRule repeats every months calendar months plus days calendar days.
// Step k is always computed from the first start so month lengths never
// accumulate drift. A day of month the target month lacks is clamped to its
// last day: a show on the 31st plays on the 30th in April and on the 28th or
// 29th in February.
type stepRule struct {
	months int
	days   int
}

func fixedStep(months, days int) Factory {
	return func(string) (Rule, error) {
		return stepRule{months: months, days: days}, nil
	}
}

func intervalStep(months, days int) Factory {
	return func(xData string) (Rule, error) {
		n, err := strconv.Atoi(strings.TrimSpace(xData))
		if err != nil || n < 1 || n > maxInterval {
			return nil, fmt.Errorf("%w: interval %q", ErrInvalidPayload, xData)
		}
		return stepRule{months: months * n, days: days * n}, nil
	}
}

// maxPeriod is an upper bound on the real length of one step, allowing for
// DST shifts and 31-day months.
func (r stepRule) maxPeriod() time.Duration {
	return time.Duration(r.months)*(31*24*time.Hour+time.Hour) +
		time.Duration(r.days)*25*time.Hour
}

func (r stepRule) Starts(span Span) ([]time.Time, error) {
	loc := span.Location
	if loc == nil {
		loc = time.UTC
	}
	first := span.First.In(loc)
	after, before := span.after(), span.before()

	// Every step below k starts no later than first+k*maxPeriod and so ends
	// at or before the window start.
	k := 0
	if gap := after.Sub(first); gap > 0 {
		k = int(gap / r.maxPeriod())
	}

	var starts []time.Time
	for ; ; k++ {
		start := r.step(first, k)
		if !start.Before(before) {
			break
		}
		if !start.After(after) {
			continue
		}
		starts = append(starts, start)
		if span.Limit > 0 && len(starts) > span.Limit {
			return nil, ErrTooManyOccurrences
		}
	}
	return starts, nil
}

// step returns the start of step k
func (r stepRule) step(first time.Time, k int) time.Time {
	if r.months == 0 {
		return first.AddDate(0, 0, k*r.days)
	}
	year, month, day := first.Date()
	// Day 1 of the target month never overflows
	target := time.Date(year, month+time.Month(k*r.months), 1, 0, 0, 0, 0, first.Location())
	if last := daysIn(target.Year(), target.Month(), first.Location()); day > last {
		day = last
	}
	hour, minute, sec := first.Clock()
	start := time.Date(target.Year(), target.Month(), day, hour, minute, sec, first.Nanosecond(), first.Location())
	return start.AddDate(0, 0, k*r.days)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 12, 0, 0, 0, loc).Day()
}
