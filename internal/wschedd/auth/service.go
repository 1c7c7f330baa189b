// Package auth authenticates API callers by bearer token and resolves them
// to actors carrying their structured capabilities.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/wrale/wrale-scheduler/internal/wschedd/access"
	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
)

// Repository defines storage for tokens and capabilities
type Repository interface {
	// Save stores a token
	Save(ctx context.Context, token *Token) error

	// FindByHash finds a token by the hash of its plain value
	FindByHash(ctx context.Context, hash string) (*Token, error)

	// Touch records that a token was used
	Touch(ctx context.Context, token *Token, at time.Time) error

	// DeleteByUser removes every token of a user
	DeleteByUser(ctx context.Context, userID int64) error

	// Capabilities lists the capabilities held by a user
	Capabilities(ctx context.Context, userID int64) ([]access.Capability, error)
}

// Service issues and checks tokens
type Service struct {
	repo   Repository
	expiry time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new authentication service
func NewService(repo Repository, expiry time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		expiry: expiry,
		logger: logger,
		now:    time.Now,
	}
}

// CreateToken issues a new token for a user. Existing tokens stay valid.
func (s *Service) CreateToken(ctx context.Context, userID int64) (*Token, error) {
	const op = "AuthService.CreateToken"

	if userID <= 0 {
		return nil, werrors.Invalid("User ID is invalid.", op)
	}

	token := NewToken(userID, s.expiry)
	if err := s.repo.Save(ctx, token); err != nil {
		s.logger.Error("failed to save token",
			"error", err,
			"userID", userID,
			"operation", op,
		)
		return nil, err
	}
	return token, nil
}

// Authenticate resolves a presented token to the actor it belongs to
func (s *Service) Authenticate(ctx context.Context, plain string) (*access.Actor, error) {
	const op = "AuthService.Authenticate"

	plain = strings.TrimSpace(plain)
	if plain == "" {
		return nil, unauthorized(op, ErrTokenInvalid)
	}

	token, err := s.repo.FindByHash(ctx, HashToken(plain))
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, unauthorized(op, ErrTokenInvalid)
		}
		s.logger.Error("failed to find token",
			"error", err,
			"operation", op,
		)
		return nil, err
	}

	now := s.now()
	if token.Expired(now) {
		return nil, unauthorized(op, ErrTokenExpired)
	}

	caps, err := s.repo.Capabilities(ctx, token.UserID)
	if err != nil {
		s.logger.Error("failed to load capabilities",
			"error", err,
			"userID", token.UserID,
			"operation", op,
		)
		return nil, err
	}

	if err := s.repo.Touch(ctx, token, now); err != nil {
		// Last-used tracking is informational
		s.logger.Warn("failed to record token use",
			"error", err,
			"userID", token.UserID,
		)
	}

	return access.NewActor(token.UserID, caps...), nil
}

// RevokeTokens invalidates every token of a user
func (s *Service) RevokeTokens(ctx context.Context, userID int64) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		s.logger.Error("failed to revoke tokens",
			"error", err,
			"userID", userID,
		)
		return err
	}
	return nil
}

func unauthorized(op string, cause error) error {
	return werrors.NewError(werrors.CodeUnauthorized, "Authentication required.", op,
		errors.Join(werrors.ErrUnauthorized, cause))
}
