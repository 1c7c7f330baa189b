// Package authz decides whether an actor may place shows on a device.
//
// Holders of the device-scoped manage_schedule_permissions capability may
// schedule anything. Everyone else may only schedule occurrences that fall
// entirely inside the union of their own permission grants on the device.
package authz

import (
	"fmt"

	"github.com/wrale/wrale-scheduler/internal/wschedd/access"
	"github.com/wrale/wrale-scheduler/internal/wschedd/recurrence"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
	"github.com/wrale/wrale-scheduler/internal/wschedd/timerange"
)

// Denial reasons
const (
	ReasonNoGrant      = "You do not have permission to schedule a show on this device at this time."
	ReasonForeignGrant = "This show overlaps a timeslot granted to another user."
	ReasonNotOwner     = "Only the owner or a schedule administrator can modify this show."
	ReasonNoCapability = "You do not have permission to manage schedule permissions on this device."
)

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool
	// Override is set when the administrative capability allowed the request
	Override bool
	Reason   string
	// Uncovered is the first candidate occurrence no grant covers
	Uncovered timerange.Range
}

func allow(override bool) Decision {
	return Decision{Allowed: true, Override: override}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Gate evaluates authorization rules
type Gate struct {
	expander *recurrence.Expander
}

// NewGate creates a gate expanding grants with e
func NewGate(e *recurrence.Expander) *Gate {
	return &Gate{expander: e}
}

// AuthorizeShow decides whether actor may place a show with the given
// occurrences on deviceID. grants are the permissions stored for the device
// around window; only the actor's own grants count toward coverage.
func (g *Gate) AuthorizeShow(actor *access.Actor, deviceID int64, occurrences []timerange.Range, grants []*schedule.Permission, window timerange.Range) (Decision, error) {
	if actor == nil {
		return deny(ReasonNoGrant), nil
	}
	if actor.Can(access.ManageSchedulePermissions, deviceID) {
		return allow(true), nil
	}

	var own, foreign []timerange.Range
	for _, grant := range grants {
		if grant.DeviceID != deviceID {
			continue
		}
		expanded, err := g.expander.Expand(grant.Definition(), window)
		if err != nil {
			return Decision{}, fmt.Errorf("expanding permission %d: %w", grant.ID, err)
		}
		if grant.UserID == actor.UserID {
			own = append(own, expanded...)
		} else {
			foreign = append(foreign, expanded...)
		}
	}

	covered := timerange.Merge(own)
	for _, occ := range occurrences {
		if timerange.Covered(covered, occ) {
			continue
		}
		d := deny(ReasonNoGrant)
		for _, f := range foreign {
			if timerange.Overlaps(f, occ) {
				d.Reason = ReasonForeignGrant
				break
			}
		}
		d.Uncovered = occ
		return d, nil
	}
	return allow(false), nil
}

// CanModifyShow reports whether actor may edit or delete show. Owners
// always may; anyone else needs the administrative capability on the
// show's device.
func (g *Gate) CanModifyShow(actor *access.Actor, show *schedule.Show) Decision {
	if actor == nil {
		return deny(ReasonNotOwner)
	}
	if show.UserID == actor.UserID {
		return allow(false)
	}
	if actor.Can(access.ManageSchedulePermissions, show.DeviceID) {
		return allow(true)
	}
	return deny(ReasonNotOwner)
}

// CanManagePermissions reports whether actor may create, edit, delete or
// inspect permission grants on deviceID.
func (g *Gate) CanManagePermissions(actor *access.Actor, deviceID int64) Decision {
	if actor.Can(access.ManageSchedulePermissions, deviceID) {
		return allow(true)
	}
	return deny(ReasonNoCapability)
}
