package authz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-scheduler/internal/wschedd/access"
	"github.com/wrale/wrale-scheduler/internal/wschedd/recurrence"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
	"github.com/wrale/wrale-scheduler/internal/wschedd/timerange"
)

var noon = time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

const device = int64(4)

func grant(id, user int64, from time.Time, d time.Duration) *schedule.Permission {
	return &schedule.Permission{
		ID: id, UserID: user, DeviceID: device,
		Timing: schedule.Timing{Start: from, Duration: d, Mode: recurrence.ModeOnce},
	}
}

func TestAuthorizeShow(t *testing.T) {
	gate := NewGate(recurrence.NewExpander())
	window := timerange.New(noon.Add(-24*time.Hour), 72*time.Hour)
	user := access.NewActor(7)
	admin := access.NewActor(8, access.Capability{Action: access.ManageSchedulePermissions, DeviceID: device})
	otherAdmin := access.NewActor(9, access.Capability{Action: access.ManageSchedulePermissions, DeviceID: device + 1})

	grants := []*schedule.Permission{
		grant(1, 7, noon, time.Hour),
		grant(2, 7, noon.Add(time.Hour), time.Hour), // touches grant 1
		grant(3, 5, noon.Add(3*time.Hour), time.Hour),
	}

	tests := []struct {
		name       string
		actor      *access.Actor
		occ        timerange.Range
		grants     []*schedule.Permission
		allowed    bool
		override   bool
		wantReason string
	}{
		{"inside single grant", user, timerange.New(noon.Add(10*time.Minute), 30*time.Minute), grants, true, false, ""},
		{"spans touching grants", user, timerange.New(noon.Add(30*time.Minute), time.Hour), grants, true, false, ""},
		{"exactly the union", user, timerange.New(noon, 2*time.Hour), grants, true, false, ""},
		{"runs past grant", user, timerange.New(noon.Add(90*time.Minute), time.Hour), grants, false, false, ReasonNoGrant},
		{"inside another user's grant", user, timerange.New(noon.Add(3*time.Hour), 30*time.Minute), grants, false, false, ReasonForeignGrant},
		{"no grants", user, timerange.New(noon, time.Minute), nil, false, false, ReasonNoGrant},
		{"admin without grants", admin, timerange.New(noon.Add(3*time.Hour), time.Hour), nil, true, true, ""},
		{"admin of another device", otherAdmin, timerange.New(noon, time.Minute), nil, false, false, ReasonNoGrant},
		{"anonymous", nil, timerange.New(noon, time.Minute), grants, false, false, ReasonNoGrant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := gate.AuthorizeShow(tt.actor, device, []timerange.Range{tt.occ}, tt.grants, window)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.override, d.Override)
			assert.Equal(t, tt.wantReason, d.Reason)
		})
	}
}

func TestAuthorizeRecurringShowNeedsEveryOccurrenceCovered(t *testing.T) {
	gate := NewGate(recurrence.NewExpander())
	user := access.NewActor(7)

	weekly := &schedule.Permission{
		ID: 1, UserID: 7, DeviceID: device,
		Timing: schedule.Timing{Start: noon, Duration: 2 * time.Hour, Mode: recurrence.ModeWeekly, Stop: noon.AddDate(0, 0, 21)},
	}
	show := recurrence.Definition{
		Range: timerange.New(noon, time.Hour),
		Mode:  recurrence.ModeWeekly,
		Stop:  noon.AddDate(0, 0, 28),
	}
	occs, err := recurrence.NewExpander().Expand(show, show.Bounds())
	require.NoError(t, err)
	require.Len(t, occs, 4)

	d, err := gate.AuthorizeShow(user, device, occs, []*schedule.Permission{weekly}, show.Bounds())
	require.NoError(t, err)
	assert.False(t, d.Allowed, "fourth week is outside the grant")
	assert.Equal(t, noon.AddDate(0, 0, 21), d.Uncovered.Start)

	d, err = gate.AuthorizeShow(user, device, occs[:3], []*schedule.Permission{weekly}, show.Bounds())
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestCanModifyShow(t *testing.T) {
	gate := NewGate(recurrence.NewExpander())
	s := &schedule.Show{ID: 1, UserID: 7, DeviceID: device}

	assert.True(t, gate.CanModifyShow(access.NewActor(7), s).Allowed)
	assert.False(t, gate.CanModifyShow(access.NewActor(8), s).Allowed)
	assert.True(t, gate.CanModifyShow(access.NewActor(8, access.Capability{Action: access.ManageSchedulePermissions}), s).Override)
	assert.False(t, gate.CanModifyShow(nil, s).Allowed)
}

func TestCanManagePermissions(t *testing.T) {
	gate := NewGate(recurrence.NewExpander())
	scoped := access.NewActor(1, access.Capability{Action: access.ManageSchedulePermissions, DeviceID: device})

	assert.True(t, gate.CanManagePermissions(scoped, device).Allowed)
	assert.Equal(t, ReasonNoCapability, gate.CanManagePermissions(scoped, device+1).Reason)
	assert.False(t, gate.CanManagePermissions(nil, device).Allowed)
}
