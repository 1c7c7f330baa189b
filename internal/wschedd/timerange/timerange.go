// Package timerange implements half-open time intervals and the duration
// arithmetic used by every schedule entry.
package timerange

import (
	"sort"
	"time"
)

// Range is the half-open interval [Start, Start+Duration).
type Range struct {
	Start    time.Time
	Duration time.Duration
}

// New returns the range starting at start lasting d.
func New(start time.Time, d time.Duration) Range {
	return Range{Start: start, Duration: d}
}

// Between returns the range [start, end).
func Between(start, end time.Time) Range {
	return Range{Start: start, Duration: end.Sub(start)}
}

// End returns the exclusive end instant.
func (r Range) End() time.Time {
	return r.Start.Add(r.Duration)
}

// Valid reports whether the range has a positive duration.
func (r Range) Valid() bool {
	return r.Duration > 0
}

// Overlaps reports whether a and b share at least one instant. Ranges that
// merely touch (a.End == b.Start) do not overlap. Invalid ranges never overlap.
func Overlaps(a, b Range) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	return a.Start.Before(b.End()) && b.Start.Before(a.End())
}

// Contains reports whether inner lies entirely within outer.
func Contains(outer, inner Range) bool {
	if !outer.Valid() || !inner.Valid() {
		return false
	}
	return !inner.Start.Before(outer.Start) && !inner.End().After(outer.End())
}

// Sort orders ranges by start, then by end.
func Sort(rs []Range) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Start.Equal(rs[j].Start) {
			return rs[i].End().Before(rs[j].End())
		}
		return rs[i].Start.Before(rs[j].Start)
	})
}

// Merge returns the union of rs as sorted, disjoint ranges. Overlapping and
// touching ranges are joined. Invalid ranges are dropped. rs is not modified.
func Merge(rs []Range) []Range {
	valid := make([]Range, 0, len(rs))
	for _, r := range rs {
		if r.Valid() {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	Sort(valid)

	merged := []Range{valid[0]}
	for _, r := range valid[1:] {
		last := &merged[len(merged)-1]
		if r.Start.After(last.End()) {
			merged = append(merged, r)
			continue
		}
		if r.End().After(last.End()) {
			last.Duration = r.End().Sub(last.Start)
		}
	}
	return merged
}

// Covered reports whether r lies entirely within one of the sorted,
// disjoint ranges produced by Merge.
func Covered(merged []Range, r Range) bool {
	i := sort.Search(len(merged), func(i int) bool {
		return merged[i].End().After(r.Start)
	})
	return i < len(merged) && Contains(merged[i], r)
}
