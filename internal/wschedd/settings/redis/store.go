// Package redis implements the settings store on Redis hashes
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/wrale/wrale-scheduler/internal/wschedd/settings"
)

// Store keeps each user's settings in one hash
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore creates a Redis-backed settings store
func NewStore(client *redis.Client) *Store {
	return &Store{client: client, prefix: "wsched:settings:"}
}

func (s *Store) key(userID int64) string {
	return fmt.Sprintf("%s%d", s.prefix, userID)
}

// Get returns the value stored under key for userID
func (s *Store) Get(ctx context.Context, userID int64, key string) (string, error) {
	v, err := s.client.HGet(ctx, s.key(userID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", settings.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading setting %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key for userID
func (s *Store) Set(ctx context.Context, userID int64, key, value string) error {
	if err := s.client.HSet(ctx, s.key(userID), key, value).Err(); err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}
