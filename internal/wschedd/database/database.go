// Package database provides utilities for database operations
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
	"github.com/wrale/wrale-scheduler/internal/wschedd/migrations"
)

// Tx wraps a database transaction with additional functionality
type Tx struct {
	*sqlx.Tx
}

// TxOptions defines options for transaction execution
type TxOptions struct {
	// Isolation sets the transaction isolation level
	Isolation sql.IsolationLevel
	// ReadOnly indicates if the transaction is read-only
	ReadOnly bool
}

// PoolOptions configures the connection pool
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// ConnectRetries is how many times to retry the initial ping
	ConnectRetries int
	RetryDelay     time.Duration
}

// Open connects to PostgreSQL, waits for it to answer and applies pending
// migrations.
func Open(ctx context.Context, dsn string, opts PoolOptions, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	retries := opts.ConnectRetries
	if retries < 1 {
		retries = 1
	}
	for attempt := 1; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		if attempt >= retries {
			db.Close()
			return nil, fmt.Errorf("error connecting to database after %d attempts: %w", attempt, err)
		}
		logger.Warn("database not ready, retrying",
			"attempt", attempt,
			"error", err,
		)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(opts.RetryDelay):
		}
	}

	if err := migrations.NewManager(db.DB, logger).ApplyMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error applying migrations: %w", err)
	}
	return db, nil
}

// RunInTx executes a function within a transaction
func RunInTx(ctx context.Context, db *sqlx.DB, opts *TxOptions, fn func(*Tx) error) error {
	var txOpts *sql.TxOptions
	if opts != nil {
		txOpts = &sql.TxOptions{
			Isolation: opts.Isolation,
			ReadOnly:  opts.ReadOnly,
		}
	}

	tx, err := db.BeginTxx(ctx, txOpts)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	if err := fn(&Tx{Tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// MapError converts database-specific errors to domain errors
func MapError(err error, op string) error {
	if err == nil {
		return nil
	}

	// Already mapped
	var domainErr *werrors.Error
	if errors.As(err, &domainErr) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return werrors.NewError(werrors.CodeConflict, "resource already exists", op, werrors.ErrConflict)
		case "23503": // foreign_key_violation
			return werrors.NewError(werrors.CodeNotFound, "referenced resource not found", op, werrors.ErrNotFound)
		case "23514": // check_violation
			return werrors.NewError(werrors.CodeInvalidInput, pqErr.Message, op, werrors.ErrInvalidInput)
		case "55P03": // lock_not_available
			return werrors.NewError(werrors.CodeConflict, "device schedule is busy, try again", op, werrors.ErrConflict)
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return werrors.NewError(werrors.CodeNotFound, "resource not found", op, werrors.ErrNotFound)
	}

	return werrors.NewError(werrors.CodeInternal, "internal database error", op, err)
}
