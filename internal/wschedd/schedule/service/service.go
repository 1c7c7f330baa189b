// Package service implements the scheduling workflow: requests are
// validated, authorized, checked for collisions and committed under the
// device's schedule lock.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wrale/wrale-scheduler/internal/wschedd/access"
	"github.com/wrale/wrale-scheduler/internal/wschedd/authz"
	"github.com/wrale/wrale-scheduler/internal/wschedd/collision"
	"github.com/wrale/wrale-scheduler/internal/wschedd/content"
	"github.com/wrale/wrale-scheduler/internal/wschedd/device"
	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
	"github.com/wrale/wrale-scheduler/internal/wschedd/events"
	"github.com/wrale/wrale-scheduler/internal/wschedd/recurrence"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
	"github.com/wrale/wrale-scheduler/internal/wschedd/settings"
)

// DefaultMaxQueryWindow bounds listing windows when none is configured
const DefaultMaxQueryWindow = 366 * 24 * time.Hour

// Metrics receives operation outcomes
type Metrics interface {
	collision.Recorder
	ObserveOperation(operation, outcome string)
	ObserveExpansion(kind schedule.Kind, occurrences int)
	ObservePublishFailure(eventType string)
}

// Config holds the collaborators of the service
type Config struct {
	Repository schedule.Repository
	Devices    device.Repository
	Content    content.Repository
	Settings   settings.Store
	Expander   *recurrence.Expander
	// Publisher is optional
	Publisher events.Publisher
	// Metrics is optional
	Metrics Metrics
	Logger  *slog.Logger
	// MaxQueryWindow bounds the span of listing requests
	MaxQueryWindow time.Duration
}

// Service implements schedule.Service
type Service struct {
	repo      schedule.Repository
	devices   device.Repository
	content   content.Repository
	settings  settings.Store
	expander  *recurrence.Expander
	gate      *authz.Gate
	checker   *collision.Checker
	publisher events.Publisher
	metrics   Metrics
	logger    *slog.Logger
	maxWindow time.Duration
	now       func() time.Time
}

var _ schedule.Service = (*Service)(nil)

// New creates a new schedule service instance
func New(cfg Config) *Service {
	expander := cfg.Expander
	if expander == nil {
		expander = recurrence.NewExpander()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxWindow := cfg.MaxQueryWindow
	if maxWindow <= 0 {
		maxWindow = DefaultMaxQueryWindow
	}

	return &Service{
		repo:      cfg.Repository,
		devices:   cfg.Devices,
		content:   cfg.Content,
		settings:  cfg.Settings,
		expander:  expander,
		gate:      authz.NewGate(expander),
		checker:   collision.NewChecker(expander, metrics),
		publisher: cfg.Publisher,
		metrics:   metrics,
		logger:    logger,
		maxWindow: maxWindow,
		now:       time.Now,
	}
}

// requireActor rejects anonymous callers
func requireActor(actor *access.Actor, op string) error {
	if actor == nil {
		return werrors.NewError(werrors.CodeUnauthorized, "Authentication required.", op, werrors.ErrUnauthorized)
	}
	return nil
}

// observe records the outcome of an operation from its returned error
func (s *Service) observe(op string, err error) {
	s.metrics.ObserveOperation(op, outcome(err))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case werrors.IsInvalidInput(err):
		return "invalid"
	case werrors.IsForbidden(err), werrors.IsUnauthorized(err):
		return "forbidden"
	case werrors.IsConflict(err):
		return "conflict"
	case werrors.IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}

// publish delivers a change notification after commit. Failures are logged
// only; the change is already durable.
func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	event.Timestamp = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.ObservePublishFailure(string(event.Type))
		s.logger.Warn("failed to publish schedule event",
			"error", err,
			"type", event.Type,
			"deviceID", event.DeviceID,
			"entryID", event.EntryID,
		)
	}
}

// internal wraps unexpected failures, leaving domain errors and failures
// already wrapped by op untouched
func (s *Service) internal(op, msg string, err error) error {
	var domainErr *werrors.Error
	if errors.As(err, &domainErr) && (domainErr.Code != werrors.CodeInternal || domainErr.Op == op) {
		return err
	}
	s.logger.Error(msg,
		"error", err,
		"operation", op,
	)
	return werrors.NewError(werrors.CodeInternal, msg, op, err)
}

type noopMetrics struct{}

func (noopMetrics) ObserveCollisionCheck(schedule.Kind, time.Duration, int, bool) {}
func (noopMetrics) ObserveOperation(string, string)                                {}
func (noopMetrics) ObserveExpansion(schedule.Kind, int)                            {}
func (noopMetrics) ObservePublishFailure(string)                                   {}
