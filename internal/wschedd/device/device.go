// Package device implements the playback device lookups the scheduler needs
package device

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Device is a playback device schedules are written for
type Device struct {
	// ID is the unique identifier for this device
	ID int64
	// Name is a human-readable identifier
	Name string
	// Location identifies where this device is physically located
	Location Location
	// CreatedAt is when the device was registered
	CreatedAt time.Time
}

// Location represents where a device is physically located
type Location struct {
	// SiteID identifies the physical location/building
	SiteID string
	// Zone identifies the area within the site (e.g., "entrance", "studio")
	Zone string
	// Position provides additional positioning info within the zone
	Position string
}

// ErrNotFound indicates a device lookup failure
type ErrNotFound struct {
	ID int64
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("device not found: %d", e.ID)
}

// Repository defines read access to devices
type Repository interface {
	// FindByID retrieves a device by its identifier
	FindByID(ctx context.Context, id int64) (*Device, error)

	// Exists reports whether a device with the identifier exists
	Exists(ctx context.Context, id int64) (bool, error)

	// List retrieves every device ordered by name
	List(ctx context.Context) ([]*Device, error)
}

// MemoryRepository is an in-process Repository
type MemoryRepository struct {
	mu      sync.RWMutex
	devices map[int64]*Device
}

// NewMemoryRepository creates a repository holding devices
func NewMemoryRepository(devices ...*Device) *MemoryRepository {
	r := &MemoryRepository{devices: make(map[int64]*Device)}
	for _, d := range devices {
		r.Add(d)
	}
	return r
}

// Add registers a device
func (r *MemoryRepository) Add(d *Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[d.ID] = d
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[id]
	if !ok {
		return nil, ErrNotFound{ID: id}
	}
	copied := *d
	return &copied, nil
}

func (r *MemoryRepository) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.devices[id]
	return ok, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		copied := *d
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
