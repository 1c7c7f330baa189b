// Package ratelimit throttles API requests per caller using fixed windows
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// LimitKey identifies a specific rate limit counter
type LimitKey struct {
	Type     string // e.g., "api_request", "schedule_write"
	Token    string // auth token or other caller identifier
	RemoteIP string // remote IP for unauthenticated callers
}

// Limit defines the rate limit configuration
type Limit struct {
	// Rate is the number of operations allowed per period
	Rate int
	// Period is the time window for the rate
	Period time.Duration
	// BurstSize allows a short burst over the rate
	BurstSize int
}

// Max returns the number of operations allowed per window including burst
func (l Limit) Max() int {
	return l.Rate + l.BurstSize
}

// Status reports a counter after an increment
type Status struct {
	Limit     Limit
	Count     int
	Remaining int
	Reset     time.Time
}

// Store handles rate limit counter persistence
type Store interface {
	// Increment bumps the key's counter in its current window
	Increment(ctx context.Context, key LimitKey, limit Limit) (Status, error)

	// Reset clears a counter
	Reset(ctx context.Context, key LimitKey) error
}

var (
	// ErrLimitExceeded is returned once a window's allowance is spent
	ErrLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidLimit is returned when registering a non-positive limit
	ErrInvalidLimit = errors.New("invalid rate limit configuration")
	// ErrInvalidKey is returned for a key without a type
	ErrInvalidKey = errors.New("invalid rate limit key")
)
