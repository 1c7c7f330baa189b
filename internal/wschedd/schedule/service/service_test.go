package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-scheduler/internal/wschedd/access"
	"github.com/wrale/wrale-scheduler/internal/wschedd/authz"
	"github.com/wrale/wrale-scheduler/internal/wschedd/content"
	"github.com/wrale/wrale-scheduler/internal/wschedd/device"
	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
	"github.com/wrale/wrale-scheduler/internal/wschedd/events"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule/memory"
	"github.com/wrale/wrale-scheduler/internal/wschedd/settings"
)

const (
	deviceA = 1
	deviceB = 2
	mediaID = 10
	adminID = 100
	aliceID = 200
	bobID   = 300
)

var (
	admin = access.NewActor(adminID, access.Capability{Action: access.ManageSchedulePermissions, DeviceID: access.AllDevices})
	alice = access.NewActor(aliceID)
	bob   = access.NewActor(bobID)
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Type
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc       *Service
	repo      *memory.Repository
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := memory.NewRepository()
	publisher := &recordingPublisher{}
	svc := New(Config{
		Repository: repo,
		Devices: device.NewMemoryRepository(
			&device.Device{ID: deviceA, Name: "studio"},
			&device.Device{ID: deviceB, Name: "lobby"},
		),
		Content:   content.NewMemoryRepository().Add(schedule.ItemMedia, mediaID),
		Settings:  settings.NewMemoryStore(),
		Publisher: publisher,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &fixture{svc: svc, repo: repo, publisher: publisher}
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

// showAt builds a one-off media show on device covering [start, end)
func showAt(deviceID, start, end int64) schedule.SaveShowRequest {
	return schedule.SaveShowRequest{
		Device:   itoa(deviceID),
		Mode:     "once",
		Start:    itoa(start),
		Duration: schedule.DurationFields{Seconds: itoa(end - start)},
		ItemType: "media",
		ItemID:   itoa(mediaID),
	}
}

// grantAt builds a one-off permission for userID on device covering [start, end)
func grantAt(userID, deviceID, start, end int64) schedule.SavePermissionRequest {
	return schedule.SavePermissionRequest{
		Device:      itoa(deviceID),
		UserID:      itoa(userID),
		Mode:        "once",
		Start:       itoa(start),
		Duration:    schedule.DurationFields{Seconds: itoa(end - start)},
		Description: "slot",
	}
}

func (f *fixture) mustShow(t *testing.T, actor *access.Actor, req schedule.SaveShowRequest) *schedule.Show {
	t.Helper()
	show, err := f.svc.SaveShow(context.Background(), actor, req)
	require.NoError(t, err)
	return show
}

func (f *fixture) mustGrant(t *testing.T, req schedule.SavePermissionRequest) *schedule.Permission {
	t.Helper()
	p, err := f.svc.SavePermission(context.Background(), admin, req)
	require.NoError(t, err)
	return p
}

func TestSaveShowCollisions(t *testing.T) {
	tests := []struct {
		name     string
		existing [2]int64
		device   int64
		start    int64
		end      int64
		conflict bool
	}{
		{name: "overlapping", existing: [2]int64{150, 250}, device: deviceA, start: 100, end: 200, conflict: true},
		{name: "adjacent after", existing: [2]int64{200, 300}, device: deviceA, start: 100, end: 200},
		{name: "adjacent before", existing: [2]int64{0, 100}, device: deviceA, start: 100, end: 200},
		{name: "contained", existing: [2]int64{120, 130}, device: deviceA, start: 100, end: 200, conflict: true},
		{name: "other device", existing: [2]int64{150, 250}, device: deviceB, start: 100, end: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.mustShow(t, admin, showAt(deviceA, tt.existing[0], tt.existing[1]))

			_, err := f.svc.SaveShow(context.Background(), admin, showAt(tt.device, tt.start, tt.end))
			if !tt.conflict {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, werrors.IsConflict(err))
			assert.Equal(t, werrors.CodeConflict, werrors.Code(err))
			assert.Equal(t, "This show overlaps an existing show on this device.", werrors.Reason(err))
		})
	}
}

func TestSaveShowEditExcludesItself(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	show := f.mustShow(t, admin, showAt(deviceA, 100, 200))

	req := showAt(deviceA, 100, 200)
	req.ID = itoa(show.ID)
	edited, err := f.svc.SaveShow(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, show.ID, edited.ID)

	// Moving it onto its own old slot partially still only collides with itself
	req = showAt(deviceA, 150, 250)
	req.ID = itoa(show.ID)
	_, err = f.svc.SaveShow(ctx, admin, req)
	assert.NoError(t, err)
}

func TestSaveShowAuthorization(t *testing.T) {
	ctx := context.Background()

	t.Run("no grant is forbidden", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.SaveShow(ctx, alice, showAt(deviceA, 100, 200))
		require.Error(t, err)
		assert.True(t, werrors.IsForbidden(err))
		assert.Equal(t, authz.ReasonNoGrant, werrors.Reason(err))
	})

	t.Run("containing grant allows", func(t *testing.T) {
		f := newFixture(t)
		f.mustGrant(t, grantAt(aliceID, deviceA, 50, 250))
		show, err := f.svc.SaveShow(ctx, alice, showAt(deviceA, 100, 200))
		require.NoError(t, err)
		assert.Equal(t, int64(aliceID), show.UserID)
	})

	t.Run("adjoining grants cover together", func(t *testing.T) {
		f := newFixture(t)
		f.mustGrant(t, grantAt(aliceID, deviceA, 50, 150))
		f.mustGrant(t, grantAt(aliceID, deviceA, 150, 250))
		_, err := f.svc.SaveShow(ctx, alice, showAt(deviceA, 100, 200))
		assert.NoError(t, err)
	})

	t.Run("grant on another device does not count", func(t *testing.T) {
		f := newFixture(t)
		f.mustGrant(t, grantAt(aliceID, deviceB, 50, 250))
		_, err := f.svc.SaveShow(ctx, alice, showAt(deviceA, 100, 200))
		assert.True(t, werrors.IsForbidden(err))
	})

	t.Run("foreign grant is named", func(t *testing.T) {
		f := newFixture(t)
		f.mustGrant(t, grantAt(bobID, deviceA, 50, 250))
		_, err := f.svc.SaveShow(ctx, alice, showAt(deviceA, 100, 200))
		assert.True(t, werrors.IsForbidden(err))
		assert.Equal(t, authz.ReasonForeignGrant, werrors.Reason(err))
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.SaveShow(ctx, nil, showAt(deviceA, 100, 200))
		assert.True(t, werrors.IsUnauthorized(err))
	})
}

func TestSaveShowEditOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mustGrant(t, grantAt(aliceID, deviceA, 0, 1000))
	f.mustGrant(t, grantAt(bobID, deviceA, 1000, 2000))
	show := f.mustShow(t, alice, showAt(deviceA, 100, 200))

	req := showAt(deviceA, 300, 400)
	req.ID = itoa(show.ID)

	_, err := f.svc.SaveShow(ctx, bob, req)
	assert.True(t, werrors.IsForbidden(err))
	assert.Equal(t, authz.ReasonNotOwner, werrors.Reason(err))

	edited, err := f.svc.SaveShow(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, int64(aliceID), edited.UserID, "editing keeps the original owner")

	stored, err := f.svc.GetShow(ctx, bob, itoa(show.ID), false)
	require.NoError(t, err)
	assert.Equal(t, int64(aliceID), stored.UserID)
	assert.Equal(t, time.Unix(300, 0).UTC(), stored.Start.UTC())
}

func TestSaveShowValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*schedule.SaveShowRequest)
		reason string
		check  func(error) bool
	}{
		{
			name:   "zero duration",
			mutate: func(r *schedule.SaveShowRequest) { r.Duration = schedule.DurationFields{} },
			reason: "The duration is not valid.",
			check:  werrors.IsInvalidInput,
		},
		{
			name:   "negative duration component",
			mutate: func(r *schedule.SaveShowRequest) { r.Duration = schedule.DurationFields{Days: "-1", Hours: "30"} },
			reason: "The duration is not valid.",
			check:  werrors.IsInvalidInput,
		},
		{
			name:   "malformed device",
			mutate: func(r *schedule.SaveShowRequest) { r.Device = "abc" },
			reason: "Device ID is invalid.",
			check:  werrors.IsInvalidInput,
		},
		{
			name:   "unknown device",
			mutate: func(r *schedule.SaveShowRequest) { r.Device = "99" },
			reason: "Device not found.",
			check:  werrors.IsNotFound,
		},
		{
			name:   "unknown mode",
			mutate: func(r *schedule.SaveShowRequest) { r.Mode = "fortnightly" },
			reason: "The recurrence mode is not valid.",
			check:  werrors.IsInvalidInput,
		},
		{
			name: "recurring without stop",
			mutate: func(r *schedule.SaveShowRequest) {
				r.Mode = "daily"
				r.Stop = ""
			},
			reason: "The stop date is invalid.",
			check:  werrors.IsInvalidInput,
		},
		{
			name: "stop before start",
			mutate: func(r *schedule.SaveShowRequest) {
				r.Mode = "daily"
				r.Stop = "50"
			},
			reason: "The stop date must be after the start date.",
			check:  werrors.IsInvalidInput,
		},
		{
			name: "bad interval",
			mutate: func(r *schedule.SaveShowRequest) {
				r.Mode = "xdays"
				r.XData = "0"
				r.Stop = "900000"
			},
			reason: "The recurrence data is not valid.",
			check:  werrors.IsInvalidInput,
		},
		{
			name:   "unknown item type",
			mutate: func(r *schedule.SaveShowRequest) { r.ItemType = "video" },
			reason: "The item type is invalid.",
			check:  werrors.IsInvalidInput,
		},
		{
			name:   "missing media",
			mutate: func(r *schedule.SaveShowRequest) { r.ItemID = "11" },
			reason: "The selected item does not exist.",
			check:  werrors.IsInvalidInput,
		},
		{
			name:   "unknown show",
			mutate: func(r *schedule.SaveShowRequest) { r.ID = "42" },
			reason: "Show not found.",
			check:  werrors.IsNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := showAt(deviceA, 100, 200)
			tt.mutate(&req)
			_, err := f.svc.SaveShow(context.Background(), admin, req)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
			assert.Equal(t, tt.reason, werrors.Reason(err))
		})
	}
}

func TestSaveShowLineInNeedsNoItem(t *testing.T) {
	f := newFixture(t)
	req := showAt(deviceA, 100, 200)
	req.ItemType = "linein"
	req.ItemID = ""
	show := f.mustShow(t, admin, req)
	assert.Equal(t, int64(0), show.ItemID)
}

func TestRecurringShowCollisions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	day := int64(86400)

	// Daily 09:00-10:00 for ten days
	daily := showAt(deviceA, 9*3600, 10*3600)
	daily.Mode = "daily"
	daily.Stop = itoa(10 * day)
	f.mustShow(t, admin, daily)

	// A one-off on day 5 at 09:30 collides with an expanded occurrence
	_, err := f.svc.SaveShow(ctx, admin, showAt(deviceA, 5*day+9*3600+1800, 5*day+11*3600))
	assert.True(t, werrors.IsConflict(err))

	// After the recurrence stops the slot is free
	_, err = f.svc.SaveShow(ctx, admin, showAt(deviceA, 11*day+9*3600, 11*day+10*3600))
	assert.NoError(t, err)

	// A weekly recurrence at 10:00 touches but never overlaps
	weekly := showAt(deviceA, 10*3600, 11*3600)
	weekly.Mode = "weekly"
	weekly.Stop = itoa(30 * day)
	_, err = f.svc.SaveShow(ctx, admin, weekly)
	assert.NoError(t, err)
}

func TestDeleteShow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mustGrant(t, grantAt(aliceID, deviceA, 0, 1000))
	show := f.mustShow(t, alice, showAt(deviceA, 100, 200))

	err := f.svc.DeleteShow(ctx, bob, itoa(show.ID), false)
	assert.True(t, werrors.IsForbidden(err))

	err = f.svc.DeleteShow(ctx, alice, itoa(show.ID), true)
	assert.True(t, werrors.IsNotFound(err), "the recurring family does not hold a one-off show")

	require.NoError(t, f.svc.DeleteShow(ctx, alice, itoa(show.ID), false))

	_, err = f.svc.GetShow(ctx, alice, itoa(show.ID), false)
	assert.True(t, werrors.IsNotFound(err))
	assert.Equal(t, "Show not found.", werrors.Reason(err))

	assert.Equal(t, []events.Type{events.PermissionSaved, events.ShowSaved, events.ShowDeleted}, f.publisher.types())
}

func TestDeleteShowByAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mustGrant(t, grantAt(aliceID, deviceA, 0, 1000))
	show := f.mustShow(t, alice, showAt(deviceA, 100, 200))

	scoped := access.NewActor(bobID, access.Capability{Action: access.ManageSchedulePermissions, DeviceID: deviceB})
	assert.True(t, werrors.IsForbidden(f.svc.DeleteShow(ctx, scoped, itoa(show.ID), false)))
	assert.NoError(t, f.svc.DeleteShow(ctx, admin, itoa(show.ID), false))
}

func TestSavePermission(t *testing.T) {
	ctx := context.Background()

	t.Run("requires capability on device", func(t *testing.T) {
		f := newFixture(t)
		scoped := access.NewActor(bobID, access.Capability{Action: access.ManageSchedulePermissions, DeviceID: deviceB})

		_, err := f.svc.SavePermission(ctx, scoped, grantAt(aliceID, deviceA, 100, 200))
		assert.True(t, werrors.IsForbidden(err))
		assert.Equal(t, authz.ReasonNoCapability, werrors.Reason(err))

		_, err = f.svc.SavePermission(ctx, scoped, grantAt(aliceID, deviceB, 100, 200))
		assert.NoError(t, err)
	})

	t.Run("overlapping grants conflict", func(t *testing.T) {
		f := newFixture(t)
		f.mustGrant(t, grantAt(aliceID, deviceA, 100, 200))

		_, err := f.svc.SavePermission(ctx, admin, grantAt(bobID, deviceA, 150, 250))
		assert.True(t, werrors.IsConflict(err))
		assert.Equal(t, "This permission overlaps an existing permission on this device.", werrors.Reason(err))

		_, err = f.svc.SavePermission(ctx, admin, grantAt(bobID, deviceA, 200, 300))
		assert.NoError(t, err)
	})

	t.Run("forbidden callers learn nothing about collisions", func(t *testing.T) {
		f := newFixture(t)
		f.mustGrant(t, grantAt(aliceID, deviceA, 100, 200))
		_, err := f.svc.SavePermission(ctx, alice, grantAt(aliceID, deviceA, 150, 250))
		assert.True(t, werrors.IsForbidden(err))
	})

	t.Run("edit excludes itself", func(t *testing.T) {
		f := newFixture(t)
		p := f.mustGrant(t, grantAt(aliceID, deviceA, 100, 200))
		req := grantAt(aliceID, deviceA, 120, 260)
		req.ID = itoa(p.ID)
		edited, err := f.svc.SavePermission(ctx, admin, req)
		require.NoError(t, err)
		assert.Equal(t, p.ID, edited.ID)
	})

	t.Run("invalid grantee", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.SavePermission(ctx, admin, grantAt(0, deviceA, 100, 200))
		assert.True(t, werrors.IsInvalidInput(err))
		assert.Equal(t, "User ID is invalid.", werrors.Reason(err))
	})
}

func TestGetPermissionDisclosure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.mustGrant(t, grantAt(aliceID, deviceA, 100, 200))

	_, err := f.svc.GetPermission(ctx, alice, itoa(p.ID), false)
	assert.True(t, werrors.IsForbidden(err))

	_, err = f.svc.GetPermission(ctx, alice, "999", false)
	assert.True(t, werrors.IsForbidden(err), "non-managers cannot learn whether a grant exists")

	_, err = f.svc.GetPermission(ctx, admin, "999", false)
	assert.True(t, werrors.IsNotFound(err))
	assert.Equal(t, "Permission not found.", werrors.Reason(err))

	got, err := f.svc.GetPermission(ctx, admin, itoa(p.ID), false)
	require.NoError(t, err)
	assert.Equal(t, int64(aliceID), got.UserID)
}

func TestDeletePermission(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.mustGrant(t, grantAt(aliceID, deviceA, 100, 200))

	assert.True(t, werrors.IsForbidden(f.svc.DeletePermission(ctx, alice, itoa(p.ID), false)))
	require.NoError(t, f.svc.DeletePermission(ctx, admin, itoa(p.ID), false))
	assert.True(t, werrors.IsNotFound(f.svc.DeletePermission(ctx, admin, itoa(p.ID), false)))
}

func TestShowsQuery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	week := int64(7 * 86400)

	weekly := showAt(deviceA, 3600, 7200)
	weekly.Mode = "weekly"
	weekly.Stop = itoa(4 * week)
	f.mustShow(t, admin, weekly)

	tests := []struct {
		name   string
		query  schedule.ShowQuery
		count  int
		reason string
	}{
		{name: "one week", query: schedule.ShowQuery{Start: "0", End: itoa(week), Device: "1"}, count: 1},
		{name: "two weeks", query: schedule.ShowQuery{Start: "0", End: itoa(2 * week), Device: "1"}, count: 2},
		{name: "past the stop", query: schedule.ShowQuery{Start: "0", End: itoa(10 * week), Device: "1"}, count: 4},
		{name: "other device", query: schedule.ShowQuery{Start: "0", End: itoa(week), Device: "2"}, count: 0},
		{name: "start after end", query: schedule.ShowQuery{Start: "200", End: "100", Device: "1"}, reason: "The start or end date is invalid."},
		{name: "start equals end", query: schedule.ShowQuery{Start: "100", End: "100", Device: "1"}, reason: "The start or end date is invalid."},
		{name: "malformed device", query: schedule.ShowQuery{Start: "0", End: "100", Device: "x"}, reason: "Player ID is invalid."},
		{name: "unknown device", query: schedule.ShowQuery{Start: "0", End: "100", Device: "9"}, reason: "Player ID is invalid."},
		{name: "malformed start", query: schedule.ShowQuery{Start: "soon", End: "100", Device: "1"}, reason: "The start or end date is invalid."},
		{name: "window too large", query: schedule.ShowQuery{Start: "0", End: itoa(400 * 86400), Device: "1"}, reason: "The requested time window is too large."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Shows(ctx, alice, tt.query)
			if tt.reason != "" {
				require.Error(t, err)
				assert.True(t, werrors.IsInvalidInput(err))
				assert.Equal(t, tt.reason, werrors.Reason(err))
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.count)
			for i := 1; i < len(got); i++ {
				assert.True(t, got[i-1].Range.Start.Before(got[i].Range.Start))
			}
		})
	}
}

func TestPermissionsQuery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mustGrant(t, grantAt(aliceID, deviceA, 100, 200))
	f.mustGrant(t, grantAt(bobID, deviceA, 200, 300))

	own, err := f.svc.Permissions(ctx, alice, schedule.PermissionQuery{Start: "0", End: "1000", Device: "1", UserID: itoa(aliceID)})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, int64(aliceID), own[0].Permission.UserID)

	_, err = f.svc.Permissions(ctx, alice, schedule.PermissionQuery{Start: "0", End: "1000", Device: "1", UserID: itoa(bobID)})
	assert.True(t, werrors.IsForbidden(err))

	_, err = f.svc.Permissions(ctx, alice, schedule.PermissionQuery{Start: "0", End: "1000", Device: "1"})
	assert.True(t, werrors.IsForbidden(err))

	all, err := f.svc.Permissions(ctx, admin, schedule.PermissionQuery{Start: "0", End: "1000", Device: "1"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.Permissions(ctx, admin, schedule.PermissionQuery{Start: "0", End: "1000", Device: "1", UserID: "x"})
	assert.Equal(t, "User ID is invalid.", werrors.Reason(err))

	_, err = f.svc.Permissions(ctx, admin, schedule.PermissionQuery{Start: "0", End: "1000", Device: "9"})
	assert.Equal(t, "Device ID is invalid.", werrors.Reason(err))
}

func TestLastDevice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.LastDevice(ctx, alice, schedule.ScopeShows)
	assert.True(t, werrors.IsNotFound(err))
	assert.Equal(t, "Last schedule device not found.", werrors.Reason(err))

	err = f.svc.SetLastDevice(ctx, alice, schedule.ScopeShows, "9")
	assert.Equal(t, "Device not found.", werrors.Reason(err))

	require.NoError(t, f.svc.SetLastDevice(ctx, alice, schedule.ScopeShows, "2"))
	id, err := f.svc.LastDevice(ctx, alice, schedule.ScopeShows)
	require.NoError(t, err)
	assert.Equal(t, int64(deviceB), id)

	// Scopes and users are independent
	_, err = f.svc.LastDevice(ctx, alice, schedule.ScopePermissions)
	assert.Equal(t, "Last schedule permissions device not found.", werrors.Reason(err))
	_, err = f.svc.LastDevice(ctx, bob, schedule.ScopeShows)
	assert.True(t, werrors.IsNotFound(err))
}

func TestPublishFailureDoesNotFailSave(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")
	_, err := f.svc.SaveShow(context.Background(), admin, showAt(deviceA, 100, 200))
	assert.NoError(t, err)
}

func TestConcurrentSavesOnOneDevice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Every candidate overlaps every other one
			_, err := f.svc.SaveShow(ctx, admin, showAt(deviceA, 100+int64(i), 200+int64(i)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case werrors.IsConflict(err):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)

	shows, err := f.svc.Shows(ctx, admin, schedule.ShowQuery{Start: "0", End: "1000", Device: "1"})
	require.NoError(t, err)
	assert.Len(t, shows, 1)
}

func TestFriendlySchedule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	week := int64(7 * 86400)

	weekly := showAt(deviceA, 3600, 7200)
	weekly.Mode = "weekly"
	weekly.Stop = itoa(3 * week)
	f.mustShow(t, admin, weekly)

	got, err := f.svc.FriendlySchedule(ctx, schedule.ShowQuery{Start: "0", End: itoa(4 * week), Device: "1"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Same occurrences an authenticated listing returns
	shows, err := f.svc.Shows(ctx, alice, schedule.ShowQuery{Start: "0", End: itoa(4 * week), Device: "1"})
	require.NoError(t, err)
	assert.Equal(t, shows, got)

	_, err = f.svc.FriendlySchedule(ctx, schedule.ShowQuery{Start: "0", End: "100", Device: "9"})
	assert.True(t, werrors.IsInvalidInput(err))
	assert.Equal(t, "Player ID is invalid.", werrors.Reason(err))
}

func TestInstantsBeyondYear9999(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tooLate := "253402300800" // 10000-01-01T00:00:00Z

	req := showAt(deviceA, 100, 200)
	req.Start = "9223372036854775807"
	_, err := f.svc.SaveShow(ctx, admin, req)
	assert.True(t, werrors.IsInvalidInput(err))
	assert.Equal(t, "The start date is invalid.", werrors.Reason(err))

	req = showAt(deviceA, 100, 200)
	req.Mode = "daily"
	req.Stop = tooLate
	_, err = f.svc.SaveShow(ctx, admin, req)
	assert.True(t, werrors.IsInvalidInput(err))
	assert.Equal(t, "The stop date is invalid.", werrors.Reason(err))

	_, err = f.svc.Shows(ctx, alice, schedule.ShowQuery{Start: "0", End: tooLate, Device: "1"})
	assert.True(t, werrors.IsInvalidInput(err))
	assert.Equal(t, "The start or end date is invalid.", werrors.Reason(err))

	// The last second of 9999 is still accepted
	req = showAt(deviceA, 253402300799-3600, 253402300799)
	_, err = f.svc.SaveShow(ctx, admin, req)
	assert.NoError(t, err)
}
