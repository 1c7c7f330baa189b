package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Limit types
const (
	TypeAPIRequest    = "api_request"
	TypeScheduleWrite = "schedule_write"
)

// Service applies registered limits to keys
type Service struct {
	store   Store
	logger  *slog.Logger
	limits  map[string]Limit
	limitsM sync.RWMutex
}

// NewService creates a new rate limiting service
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		limits: make(map[string]Limit),
	}
}

// RegisterLimit adds or updates a rate limit configuration
func (s *Service) RegisterLimit(limitType string, limit Limit) error {
	if limit.Rate <= 0 || limit.Period <= 0 {
		return ErrInvalidLimit
	}
	s.limitsM.Lock()
	defer s.limitsM.Unlock()
	s.limits[limitType] = limit
	return nil
}

// RegisterDefaultLimits configures the API limit from requests per period
// and a stricter limit for schedule writes
func (s *Service) RegisterDefaultLimits(requests int, period time.Duration, burst int) error {
	if err := s.RegisterLimit(TypeAPIRequest, Limit{Rate: requests, Period: period, BurstSize: burst}); err != nil {
		return err
	}
	writes := requests / 5
	if writes < 1 {
		writes = 1
	}
	return s.RegisterLimit(TypeScheduleWrite, Limit{Rate: writes, Period: period, BurstSize: burst / 5})
}

// GetLimit returns the configured limit for a key type
func (s *Service) GetLimit(limitType string) Limit {
	s.limitsM.RLock()
	defer s.limitsM.RUnlock()
	return s.limits[limitType]
}

// Allow counts one operation for key. It returns ErrLimitExceeded with the
// current status once the window is spent. Unconfigured types are allowed.
func (s *Service) Allow(ctx context.Context, key LimitKey) (Status, error) {
	if key.Type == "" {
		return Status{}, ErrInvalidKey
	}

	limit := s.GetLimit(key.Type)
	if limit.Rate == 0 {
		s.logger.Warn("no rate limit configured for type", "type", key.Type)
		return Status{}, nil
	}

	status, err := s.store.Increment(ctx, key, limit)
	if err != nil && !errors.Is(err, ErrLimitExceeded) {
		s.logger.Error("rate limit check failed",
			"error", err,
			"type", key.Type,
		)
		return status, err
	}

	s.logger.Debug("rate limit check",
		"type", key.Type,
		"count", status.Count,
		"limit", limit.Max(),
	)
	return status, err
}

// Reset clears rate limit counters for a key
func (s *Service) Reset(ctx context.Context, key LimitKey) error {
	if key.Type == "" {
		return ErrInvalidKey
	}
	return s.store.Reset(ctx, key)
}
