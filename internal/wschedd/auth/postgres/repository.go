// Package postgres stores tokens and capabilities in PostgreSQL
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wrale/wrale-scheduler/internal/wschedd/access"
	"github.com/wrale/wrale-scheduler/internal/wschedd/auth"
	"github.com/wrale/wrale-scheduler/internal/wschedd/database"
)

type repository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL token repository
func NewRepository(db *sqlx.DB, logger *slog.Logger) auth.Repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

type tokenRow struct {
	ID         uuid.UUID    `db:"id"`
	UserID     int64        `db:"user_id"`
	TokenHash  string       `db:"token_hash"`
	ExpiresAt  time.Time    `db:"expires_at"`
	CreatedAt  time.Time    `db:"created_at"`
	LastUsedAt sql.NullTime `db:"last_used_at"`
}

func (r *repository) Save(ctx context.Context, token *auth.Token) error {
	const op = "TokenRepository.Save"

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		token.ID,
		token.UserID,
		token.Hash,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to save token",
			"error", err,
			"userID", token.UserID,
			"operation", op,
		)
		return database.MapError(err, op)
	}
	return nil
}

func (r *repository) FindByHash(ctx context.Context, hash string) (*auth.Token, error) {
	const op = "TokenRepository.FindByHash"

	var row tokenRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, user_id, token_hash, expires_at, created_at, last_used_at
		FROM access_tokens
		WHERE token_hash = $1
	`, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrTokenNotFound
	}
	if err != nil {
		return nil, database.MapError(err, op)
	}

	token := &auth.Token{
		ID:        row.ID,
		UserID:    row.UserID,
		Hash:      row.TokenHash,
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
	}
	if row.LastUsedAt.Valid {
		token.LastUsedAt = &row.LastUsedAt.Time
	}
	return token, nil
}

func (r *repository) Touch(ctx context.Context, token *auth.Token, at time.Time) error {
	const op = "TokenRepository.Touch"

	if _, err := r.db.ExecContext(ctx,
		`UPDATE access_tokens SET last_used_at = $2 WHERE id = $1`, token.ID, at); err != nil {
		return database.MapError(err, op)
	}
	return nil
}

func (r *repository) DeleteByUser(ctx context.Context, userID int64) error {
	const op = "TokenRepository.DeleteByUser"

	if _, err := r.db.ExecContext(ctx, `DELETE FROM access_tokens WHERE user_id = $1`, userID); err != nil {
		return database.MapError(err, op)
	}
	return nil
}

func (r *repository) Capabilities(ctx context.Context, userID int64) ([]access.Capability, error) {
	const op = "TokenRepository.Capabilities"

	var rows []struct {
		Action   string `db:"action"`
		DeviceID int64  `db:"device_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT action, device_id FROM user_capabilities WHERE user_id = $1
	`, userID); err != nil {
		return nil, database.MapError(err, op)
	}

	caps := make([]access.Capability, len(rows))
	for i, row := range rows {
		caps[i] = access.Capability{Action: access.Action(row.Action), DeviceID: row.DeviceID}
	}
	return caps, nil
}
