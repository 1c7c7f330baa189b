// Package redis implements rate limit counters on Redis
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wrale/wrale-scheduler/internal/wschedd/ratelimit"
)

// Store implements fixed-window counters shared by every server instance
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis-backed rate limit store
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) keyStr(key ratelimit.LimitKey) string {
	return fmt.Sprintf("wsched:rate:%s:%s:%s", key.Type, key.Token, key.RemoteIP)
}

// Increment bumps the counter, starting a new window on first use
func (s *Store) Increment(ctx context.Context, key ratelimit.LimitKey, limit ratelimit.Limit) (ratelimit.Status, error) {
	k := s.keyStr(key)

	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return ratelimit.Status{}, fmt.Errorf("incrementing rate counter: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, k, limit.Period).Err(); err != nil {
			return ratelimit.Status{}, fmt.Errorf("setting rate window: %w", err)
		}
	}

	ttl, err := s.client.PTTL(ctx, k).Result()
	if err != nil {
		return ratelimit.Status{}, fmt.Errorf("reading rate window: %w", err)
	}
	if ttl < 0 {
		// Lost expiry, e.g. after a failed Expire; restart the window
		ttl = limit.Period
		s.client.Expire(ctx, k, ttl)
	}

	return ratelimit.StatusFor(limit, int(count), time.Now().Add(ttl))
}

// Reset clears a rate limit counter
func (s *Store) Reset(ctx context.Context, key ratelimit.LimitKey) error {
	if err := s.client.Del(ctx, s.keyStr(key)).Err(); err != nil {
		return fmt.Errorf("resetting rate counter: %w", err)
	}
	return nil
}
