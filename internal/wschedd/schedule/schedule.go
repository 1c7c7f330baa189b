// Package schedule implements the schedule domain model: shows that play
// content on a device and permission grants that let users schedule shows.
package schedule

import (
	"time"

	"github.com/wrale/wrale-scheduler/internal/wschedd/recurrence"
	"github.com/wrale/wrale-scheduler/internal/wschedd/timerange"
)

// Kind distinguishes the two entry families sharing a device's timeline
type Kind string

const (
	// KindShow is content scheduled to play on a device
	KindShow Kind = "show"
	// KindPermission is a grant allowing a user to schedule shows
	KindPermission Kind = "permission"
)

// Ref identifies an entry. One-off and recurring entries are addressed
// separately, so the recurring flag is part of the identity.
type Ref struct {
	ID        int64
	Recurring bool
}

// IsZero reports whether the ref addresses nothing
func (r Ref) IsZero() bool {
	return r.ID == 0
}

// ItemType identifies the kind of content a show plays
type ItemType string

const (
	ItemMedia    ItemType = "media"
	ItemPlaylist ItemType = "playlist"
	ItemLineIn   ItemType = "linein"
)

// NeedsID reports whether the item type references stored content
func (t ItemType) NeedsID() bool {
	return t == ItemMedia || t == ItemPlaylist
}

// Valid reports whether t is a known item type
func (t ItemType) Valid() bool {
	return t == ItemMedia || t == ItemPlaylist || t == ItemLineIn
}

// Timing is the schedule definition shared by shows and permissions
type Timing struct {
	// Start is the first occurrence start
	Start    time.Time
	Duration time.Duration
	Mode     recurrence.Mode
	XData    string
	// Stop bounds recurring occurrences; zero for one-off entries
	Stop time.Time
}

// Recurring reports whether the timing repeats
func (t Timing) Recurring() bool {
	return t.Definition().Recurring()
}

// Range returns the first occurrence
func (t Timing) Range() timerange.Range {
	return timerange.New(t.Start, t.Duration)
}

// Definition returns the timing in expander form
func (t Timing) Definition() recurrence.Definition {
	return recurrence.Definition{
		Range: t.Range(),
		Mode:  t.Mode,
		XData: t.XData,
		Stop:  t.Stop,
	}
}

// Show is content scheduled on a device
type Show struct {
	ID       int64
	UserID   int64
	DeviceID int64
	Timing
	ItemType ItemType
	// ItemID is zero for item types that take no content reference
	ItemID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ref returns the show's identity
func (s *Show) Ref() Ref {
	return Ref{ID: s.ID, Recurring: s.Recurring()}
}

// Permission grants UserID the right to schedule shows on DeviceID during
// its occurrences
type Permission struct {
	ID          int64
	UserID      int64
	DeviceID    int64
	Description string
	Timing
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ref returns the permission's identity
func (p *Permission) Ref() Ref {
	return Ref{ID: p.ID, Recurring: p.Recurring()}
}

// ShowOccurrence is one concrete play of a show
type ShowOccurrence struct {
	Show  *Show
	Range timerange.Range
}

// PermissionOccurrence is one concrete window of a permission grant
type PermissionOccurrence struct {
	Permission *Permission
	Range      timerange.Range
}
