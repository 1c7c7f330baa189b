package auth

import (
	"context"
	"sync"
	"time"

	"github.com/wrale/wrale-scheduler/internal/wschedd/access"
)

// MemoryRepository keeps tokens and capabilities in process memory for
// development servers and tests
type MemoryRepository struct {
	mu     sync.RWMutex
	tokens map[string]*Token
	caps   map[int64][]access.Capability
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tokens: make(map[string]*Token),
		caps:   make(map[int64][]access.Capability),
	}
}

// Grant gives a user a capability
func (r *MemoryRepository) Grant(userID int64, c access.Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[userID] = append(r.caps[userID], c)
}

func (r *MemoryRepository) Save(_ context.Context, token *Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *token
	stored.Plain = ""
	r.tokens[token.Hash] = &stored
	return nil
}

func (r *MemoryRepository) FindByHash(_ context.Context, hash string) (*Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[hash]
	if !ok {
		return nil, ErrTokenNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *MemoryRepository) Touch(_ context.Context, token *Token, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[token.Hash]; ok {
		t.LastUsedAt = &at
	}
	return nil
}

func (r *MemoryRepository) DeleteByUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, hash)
		}
	}
	return nil
}

func (r *MemoryRepository) Capabilities(_ context.Context, userID int64) ([]access.Capability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]access.Capability(nil), r.caps[userID]...), nil
}
