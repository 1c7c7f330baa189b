// Package content resolves the media and playlists shows refer to
package content

import (
	"context"
	"sync"

	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
)

// Repository checks content references
type Repository interface {
	// ItemExists reports whether the referenced item exists. Item types that
	// take no reference always exist.
	ItemExists(ctx context.Context, itemType schedule.ItemType, id int64) (bool, error)
}

type itemKey struct {
	itemType schedule.ItemType
	id       int64
}

// MemoryRepository is an in-process Repository
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[itemKey]struct{}
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[itemKey]struct{})}
}

// Add registers an item
func (r *MemoryRepository) Add(itemType schedule.ItemType, id int64) *MemoryRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[itemKey{itemType, id}] = struct{}{}
	return r
}

func (r *MemoryRepository) ItemExists(_ context.Context, itemType schedule.ItemType, id int64) (bool, error) {
	if !itemType.NeedsID() {
		return itemType.Valid(), nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[itemKey{itemType, id}]
	return ok, nil
}
