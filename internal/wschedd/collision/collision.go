// Package collision detects overlapping schedule entries on a device.
package collision

import (
	"fmt"
	"time"

	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
	"github.com/wrale/wrale-scheduler/internal/wschedd/recurrence"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
	"github.com/wrale/wrale-scheduler/internal/wschedd/timerange"
)

// Entry is a stored schedule definition taking part in a check
type Entry struct {
	Kind       schedule.Kind
	Ref        schedule.Ref
	UserID     int64
	DeviceID   int64
	Definition recurrence.Definition
}

// ShowEntry wraps a show for checking
func ShowEntry(s *schedule.Show) Entry {
	return Entry{
		Kind:       schedule.KindShow,
		Ref:        s.Ref(),
		UserID:     s.UserID,
		DeviceID:   s.DeviceID,
		Definition: s.Definition(),
	}
}

// PermissionEntry wraps a permission grant for checking
func PermissionEntry(p *schedule.Permission) Entry {
	return Entry{
		Kind:       schedule.KindPermission,
		Ref:        p.Ref(),
		UserID:     p.UserID,
		DeviceID:   p.DeviceID,
		Definition: p.Definition(),
	}
}

// Candidate is the already expanded entry being created or edited
type Candidate struct {
	Kind schedule.Kind
	// Editing is the stored entry the candidate replaces, zero when creating
	Editing     schedule.Ref
	DeviceID    int64
	Occurrences []timerange.Range
}

// Conflict describes the first collision found. It satisfies
// errors.Is(err, errors.ErrConflict).
type Conflict struct {
	// Kind is the blocking entry's kind
	Kind   schedule.Kind
	Ref    schedule.Ref
	UserID int64
	// Occurrence is the blocking entry's colliding occurrence
	Occurrence timerange.Range
	// Candidate is the candidate occurrence that collides
	Candidate timerange.Range
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("%s %d occurrence at %s overlaps candidate occurrence at %s",
		c.Kind, c.Ref.ID, c.Occurrence.Start.Format(time.RFC3339), c.Candidate.Start.Format(time.RFC3339))
}

// Is reports conflicts as errors.ErrConflict
func (c *Conflict) Is(target error) bool {
	return target == werrors.ErrConflict
}

// Reason returns a user-facing explanation naming the blocking kind
func (c *Conflict) Reason() string {
	if c.Kind == schedule.KindPermission {
		return "This permission overlaps an existing permission on this device."
	}
	return "This show overlaps an existing show on this device."
}

// Recorder observes completed checks
type Recorder interface {
	ObserveCollisionCheck(kind schedule.Kind, elapsed time.Duration, compared int, conflict bool)
}

// Checker compares candidate occurrences with existing entries
type Checker struct {
	expander *recurrence.Expander
	recorder Recorder
}

// NewChecker creates a checker expanding entries with e. recorder may be nil.
func NewChecker(e *recurrence.Expander, recorder Recorder) *Checker {
	return &Checker{expander: e, recorder: recorder}
}

// Check returns a *Conflict when any existing entry of the candidate's kind
// on the candidate's device has an occurrence strictly overlapping one of
// the candidate's occurrences. The entry being edited never conflicts with
// itself. Occurrences are only compared within window.
func (c *Checker) Check(candidate Candidate, existing []Entry, window timerange.Range) (err error) {
	started := time.Now()
	compared := 0
	defer func() {
		if c.recorder != nil {
			c.recorder.ObserveCollisionCheck(candidate.Kind, time.Since(started), compared, err != nil)
		}
	}()

	if len(candidate.Occurrences) == 0 {
		return nil
	}
	occurrences := append([]timerange.Range(nil), candidate.Occurrences...)
	timerange.Sort(occurrences)

	for _, entry := range existing {
		if entry.Kind != candidate.Kind || entry.DeviceID != candidate.DeviceID {
			continue
		}
		if !candidate.Editing.IsZero() && entry.Ref == candidate.Editing {
			continue
		}

		expanded, err := c.expander.Expand(entry.Definition, window)
		if err != nil {
			return fmt.Errorf("expanding %s %d: %w", entry.Kind, entry.Ref.ID, err)
		}
		compared += len(expanded)

		if occ, cand, ok := firstOverlap(expanded, occurrences); ok {
			return &Conflict{
				Kind:       entry.Kind,
				Ref:        entry.Ref,
				UserID:     entry.UserID,
				Occurrence: occ,
				Candidate:  cand,
			}
		}
	}
	return nil
}

// firstOverlap finds an overlapping pair between two start-sorted lists.
// Ranges within one list may overlap each other, so the inner scan stops on
// start order alone.
func firstOverlap(existing, candidates []timerange.Range) (timerange.Range, timerange.Range, bool) {
	for _, occ := range existing {
		for _, cand := range candidates {
			if !cand.Start.Before(occ.End()) {
				break
			}
			if timerange.Overlaps(occ, cand) {
				return occ, cand, true
			}
		}
	}
	return timerange.Range{}, timerange.Range{}, false
}
