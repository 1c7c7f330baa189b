// Package testutil provides a disposable PostgreSQL database for repository
// tests
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-scheduler/internal/wschedd/database"
)

// Session parameters for every pooled connection, in milliseconds
const (
	defaultStatementTimeout = "5000"
	defaultLockTimeout      = "1000"
)

// SetupTestDB creates a fresh, migrated database and returns it with a
// cleanup function. Tests are skipped when TEST_DATABASE_URL is unset.
func SetupTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	baseURL := os.Getenv("TEST_DATABASE_URL")
	if baseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	adminDB, err := sqlx.Open("postgres", baseURL)
	require.NoError(t, err, "Failed to open postgres database")
	defer adminDB.Close()

	dbName := fmt.Sprintf("wsched_test_%d", time.Now().UnixNano())
	_, err = adminDB.Exec(fmt.Sprintf("CREATE DATABASE %s", dbName))
	require.NoError(t, err)

	testURL, err := withDatabase(baseURL, dbName)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := database.Open(ctx, testURL, database.PoolOptions{
		ConnectRetries: 5,
		RetryDelay:     time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	cleanup := func() {
		if cerr := db.Close(); cerr != nil {
			t.Logf("Error closing test database connection: %v", cerr)
		}

		adminDB, err := sqlx.Open("postgres", baseURL)
		if err != nil {
			t.Logf("Error connecting to drop test database: %v", err)
			return
		}
		defer adminDB.Close()

		_, err = adminDB.Exec(fmt.Sprintf("SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = '%s'", dbName))
		if err != nil {
			t.Logf("Error terminating connections to test database: %v", err)
		}
		if _, err := adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName)); err != nil {
			t.Logf("Error dropping test database: %v", err)
		}
	}

	return db, cleanup
}

// Seed inserts the fixtures schedule tests need: users, devices and content
func Seed(t *testing.T, db *sqlx.DB, userIDs, deviceIDs []int64) {
	t.Helper()
	for _, id := range userIDs {
		_, err := db.Exec(`INSERT INTO users (id, username) VALUES ($1, $2)`, id, fmt.Sprintf("user-%d", id))
		require.NoError(t, err)
	}
	for _, id := range deviceIDs {
		_, err := db.Exec(`INSERT INTO devices (id, name) VALUES ($1, $2)`, id, fmt.Sprintf("device-%d", id))
		require.NoError(t, err)
	}
}

func withDatabase(rawURL, name string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing TEST_DATABASE_URL: %w", err)
	}
	u.Path = "/" + name
	// lib/pq sends unknown parameters as session settings
	q := u.Query()
	q.Set("statement_timeout", defaultStatementTimeout)
	q.Set("lock_timeout", defaultLockTimeout)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
