package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count int
	reset time.Time
}

// MemoryStore keeps fixed-window counters in process memory. It is used
// when no Redis is configured.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[LimitKey]*window
	now     func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[LimitKey]*window), now: time.Now}
}

func (s *MemoryStore) Increment(_ context.Context, key LimitKey, limit Limit) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.reset) {
		w = &window{reset: now.Add(limit.Period)}
		s.windows[key] = w
	}
	w.count++
	return StatusFor(limit, w.count, w.reset)
}

func (s *MemoryStore) Reset(_ context.Context, key LimitKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

// StatusFor builds the status for a counter value, failing once it passes
// the limit
func StatusFor(limit Limit, count int, reset time.Time) (Status, error) {
	remaining := limit.Max() - count
	if remaining < 0 {
		remaining = 0
	}
	status := Status{Limit: limit, Count: count, Remaining: remaining, Reset: reset}
	if count > limit.Max() {
		return status, ErrLimitExceeded
	}
	return status, nil
}
