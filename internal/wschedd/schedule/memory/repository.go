// Package memory implements the schedule repository in process memory. It
// backs development servers started without a database and service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
	"github.com/wrale/wrale-scheduler/internal/wschedd/timerange"
)

// Repository stores shows and permissions in maps. Shows and permissions
// have separate ID sequences; one-off and recurring entries share one.
type Repository struct {
	mu          sync.RWMutex
	shows       map[int64]*schedule.Show
	permissions map[int64]*schedule.Permission
	nextShow    int64
	nextPerm    int64

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex

	now func() time.Time
}

// NewRepository creates an empty repository
func NewRepository() *Repository {
	return &Repository{
		shows:       make(map[int64]*schedule.Show),
		permissions: make(map[int64]*schedule.Permission),
		locks:       make(map[int64]*sync.Mutex),
		now:         time.Now,
	}
}

func notFound(op string) error {
	return werrors.NewError(werrors.CodeNotFound, "resource not found", op, werrors.ErrNotFound)
}

func (r *Repository) FindShow(_ context.Context, id int64, recurring bool) (*schedule.Show, error) {
	const op = "MemoryRepository.FindShow"

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.shows[id]
	if !ok || s.Recurring() != recurring {
		return nil, notFound(op)
	}
	copied := *s
	return &copied, nil
}

func (r *Repository) ListShows(_ context.Context, filter schedule.ShowFilter) ([]*schedule.Show, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*schedule.Show
	for _, s := range r.shows {
		if s.DeviceID != filter.DeviceID || !timerange.Overlaps(s.Definition().Bounds(), filter.Window) {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Repository) SaveShow(_ context.Context, show *schedule.Show) error {
	const op = "MemoryRepository.SaveShow"

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if show.ID == 0 {
		r.nextShow++
		show.ID = r.nextShow
		show.CreatedAt = now
	} else {
		existing, ok := r.shows[show.ID]
		if !ok {
			return notFound(op)
		}
		show.CreatedAt = existing.CreatedAt
	}
	show.UpdatedAt = now
	copied := *show
	r.shows[show.ID] = &copied
	return nil
}

func (r *Repository) DeleteShow(_ context.Context, ref schedule.Ref) error {
	const op = "MemoryRepository.DeleteShow"

	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shows[ref.ID]
	if !ok || s.Recurring() != ref.Recurring {
		return notFound(op)
	}
	delete(r.shows, ref.ID)
	return nil
}

func (r *Repository) FindPermission(_ context.Context, id int64, recurring bool) (*schedule.Permission, error) {
	const op = "MemoryRepository.FindPermission"

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.permissions[id]
	if !ok || p.Recurring() != recurring {
		return nil, notFound(op)
	}
	copied := *p
	return &copied, nil
}

func (r *Repository) ListPermissions(_ context.Context, filter schedule.PermissionFilter) ([]*schedule.Permission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*schedule.Permission
	for _, p := range r.permissions {
		if p.DeviceID != filter.DeviceID {
			continue
		}
		if filter.UserID != 0 && p.UserID != filter.UserID {
			continue
		}
		if !timerange.Overlaps(p.Definition().Bounds(), filter.Window) {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Repository) SavePermission(_ context.Context, permission *schedule.Permission) error {
	const op = "MemoryRepository.SavePermission"

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if permission.ID == 0 {
		r.nextPerm++
		permission.ID = r.nextPerm
		permission.CreatedAt = now
	} else {
		existing, ok := r.permissions[permission.ID]
		if !ok {
			return notFound(op)
		}
		permission.CreatedAt = existing.CreatedAt
	}
	permission.UpdatedAt = now
	copied := *permission
	r.permissions[permission.ID] = &copied
	return nil
}

func (r *Repository) DeletePermission(_ context.Context, ref schedule.Ref) error {
	const op = "MemoryRepository.DeletePermission"

	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.permissions[ref.ID]
	if !ok || p.Recurring() != ref.Recurring {
		return notFound(op)
	}
	delete(r.permissions, ref.ID)
	return nil
}

// WithDeviceLock serializes fn with every other locked call for deviceID.
// Writes made through the bound repository are staged and applied only when
// fn succeeds.
func (r *Repository) WithDeviceLock(ctx context.Context, deviceID int64, fn func(schedule.Repository) error) error {
	lock := r.deviceLock(deviceID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &txRepository{Repository: r}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit(ctx)
}

func (r *Repository) deviceLock(deviceID int64) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	l, ok := r.locks[deviceID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[deviceID] = l
	}
	return l
}

// txRepository reads through to the parent and queues writes. Reads do not
// observe queued writes; the service writes once, last.
type txRepository struct {
	*Repository
	pending []func(context.Context) error
}

func (t *txRepository) SaveShow(_ context.Context, show *schedule.Show) error {
	t.pending = append(t.pending, func(ctx context.Context) error {
		return t.Repository.SaveShow(ctx, show)
	})
	return nil
}

func (t *txRepository) DeleteShow(_ context.Context, ref schedule.Ref) error {
	t.pending = append(t.pending, func(ctx context.Context) error {
		return t.Repository.DeleteShow(ctx, ref)
	})
	return nil
}

func (t *txRepository) SavePermission(_ context.Context, permission *schedule.Permission) error {
	t.pending = append(t.pending, func(ctx context.Context) error {
		return t.Repository.SavePermission(ctx, permission)
	})
	return nil
}

func (t *txRepository) DeletePermission(_ context.Context, ref schedule.Ref) error {
	t.pending = append(t.pending, func(ctx context.Context) error {
		return t.Repository.DeletePermission(ctx, ref)
	})
	return nil
}

func (t *txRepository) WithDeviceLock(ctx context.Context, _ int64, fn func(schedule.Repository) error) error {
	// Already holding a device lock
	return fn(t)
}

func (t *txRepository) commit(ctx context.Context) error {
	for _, apply := range t.pending {
		if err := apply(ctx); err != nil {
			return err
		}
	}
	return nil
}
