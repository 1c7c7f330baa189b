// Package settings stores small per-user preferences
package settings

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned for a setting that was never stored
var ErrNotFound = errors.New("setting not found")

// Store persists per-user settings
type Store interface {
	Get(ctx context.Context, userID int64, key string) (string, error)
	Set(ctx context.Context, userID int64, key, value string) error
}

type memoryKey struct {
	userID int64
	key    string
}

// MemoryStore keeps settings in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	values map[memoryKey]string
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[memoryKey]string)}
}

func (s *MemoryStore) Get(_ context.Context, userID int64, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[memoryKey{userID, key}]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(_ context.Context, userID int64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[memoryKey{userID, key}] = value
	return nil
}
