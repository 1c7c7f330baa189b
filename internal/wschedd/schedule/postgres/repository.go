// Package postgres implements the schedule repository using PostgreSQL.
// One-off and recurring entries share a table and are told apart by the
// recurring column.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/wrale/wrale-scheduler/internal/wschedd/database"
	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
	"github.com/wrale/wrale-scheduler/internal/wschedd/recurrence"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
)

// Repository implements schedule.Repository. A repository bound to a
// device lock runs every statement on the lock's transaction.
type Repository struct {
	db     *sqlx.DB
	q      sqlx.ExtContext
	logger *slog.Logger
}

var _ schedule.Repository = (*Repository)(nil)

// NewRepository creates a new PostgreSQL schedule repository
func NewRepository(db *sqlx.DB, logger *slog.Logger) *Repository {
	return &Repository{db: db, q: db, logger: logger}
}

type timingRow struct {
	Mode            string       `db:"mode"`
	XData           string       `db:"x_data"`
	Recurring       bool         `db:"recurring"`
	StartAt         time.Time    `db:"start_at"`
	DurationSeconds int64        `db:"duration_seconds"`
	StopAt          sql.NullTime `db:"stop_at"`
}

func newTimingRow(t schedule.Timing) timingRow {
	row := timingRow{
		Mode:            string(t.Mode),
		XData:           t.XData,
		Recurring:       t.Recurring(),
		StartAt:         t.Start.UTC(),
		DurationSeconds: int64(t.Duration / time.Second),
	}
	if row.Mode == "" {
		row.Mode = string(recurrence.ModeOnce)
	}
	if row.Recurring {
		row.StopAt = sql.NullTime{Time: t.Stop.UTC(), Valid: true}
	}
	return row
}

func (row timingRow) timing() schedule.Timing {
	t := schedule.Timing{
		Start:    row.StartAt.UTC(),
		Duration: time.Duration(row.DurationSeconds) * time.Second,
		Mode:     recurrence.Mode(row.Mode),
		XData:    row.XData,
	}
	if row.StopAt.Valid {
		t.Stop = row.StopAt.Time.UTC()
	}
	return t
}

type showRow struct {
	ID       int64 `db:"id"`
	UserID   int64 `db:"user_id"`
	DeviceID int64 `db:"device_id"`
	timingRow
	ItemType  string    `db:"item_type"`
	ItemID    int64     `db:"item_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row showRow) toShow() *schedule.Show {
	return &schedule.Show{
		ID:        row.ID,
		UserID:    row.UserID,
		DeviceID:  row.DeviceID,
		Timing:    row.timing(),
		ItemType:  schedule.ItemType(row.ItemType),
		ItemID:    row.ItemID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type permissionRow struct {
	ID          int64  `db:"id"`
	UserID      int64  `db:"user_id"`
	DeviceID    int64  `db:"device_id"`
	Description string `db:"description"`
	timingRow
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row permissionRow) toPermission() *schedule.Permission {
	return &schedule.Permission{
		ID:          row.ID,
		UserID:      row.UserID,
		DeviceID:    row.DeviceID,
		Description: row.Description,
		Timing:      row.timing(),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

const (
	showColumns = `id, user_id, device_id, mode, x_data, recurring, start_at,
		duration_seconds, stop_at, item_type, item_id, created_at, updated_at`

	permissionColumns = `id, user_id, device_id, description, mode, x_data, recurring,
		start_at, duration_seconds, stop_at, created_at, updated_at`

	// boundsOverlap matches entries whose first start is before the window
	// end and whose last possible end is after the window start
	boundsOverlap = `start_at < $3
		AND (CASE WHEN recurring THEN stop_at ELSE start_at END)
			+ duration_seconds * INTERVAL '1 second' > $2`
)

func (r *Repository) FindShow(ctx context.Context, id int64, recurring bool) (*schedule.Show, error) {
	const op = "ScheduleRepository.FindShow"

	var row showRow
	err := sqlx.GetContext(ctx, r.q, &row,
		`SELECT `+showColumns+` FROM shows WHERE id = $1 AND recurring = $2`, id, recurring)
	if err != nil {
		return nil, r.mapError(err, op, "showID", id)
	}
	return row.toShow(), nil
}

func (r *Repository) ListShows(ctx context.Context, filter schedule.ShowFilter) ([]*schedule.Show, error) {
	const op = "ScheduleRepository.ListShows"

	var rows []showRow
	err := sqlx.SelectContext(ctx, r.q, &rows,
		`SELECT `+showColumns+` FROM shows
		WHERE device_id = $1 AND `+boundsOverlap+`
		ORDER BY start_at, id`,
		filter.DeviceID, filter.Window.Start.UTC(), filter.Window.End().UTC())
	if err != nil {
		return nil, r.mapError(err, op, "deviceID", filter.DeviceID)
	}

	shows := make([]*schedule.Show, len(rows))
	for i, row := range rows {
		shows[i] = row.toShow()
	}
	return shows, nil
}

func (r *Repository) SaveShow(ctx context.Context, show *schedule.Show) error {
	const op = "ScheduleRepository.SaveShow"

	t := newTimingRow(show.Timing)
	var err error
	if show.ID == 0 {
		err = r.q.QueryRowxContext(ctx, `
			INSERT INTO shows (
				user_id, device_id, mode, x_data, recurring, start_at,
				duration_seconds, stop_at, item_type, item_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at, updated_at
		`,
			show.UserID, show.DeviceID, t.Mode, t.XData, t.Recurring, t.StartAt,
			t.DurationSeconds, t.StopAt, string(show.ItemType), show.ItemID,
		).Scan(&show.ID, &show.CreatedAt, &show.UpdatedAt)
	} else {
		err = r.q.QueryRowxContext(ctx, `
			UPDATE shows SET
				user_id = $2, device_id = $3, mode = $4, x_data = $5, recurring = $6,
				start_at = $7, duration_seconds = $8, stop_at = $9,
				item_type = $10, item_id = $11
			WHERE id = $1
			RETURNING created_at, updated_at
		`,
			show.ID, show.UserID, show.DeviceID, t.Mode, t.XData, t.Recurring,
			t.StartAt, t.DurationSeconds, t.StopAt, string(show.ItemType), show.ItemID,
		).Scan(&show.CreatedAt, &show.UpdatedAt)
	}
	if err != nil {
		return r.mapError(err, op, "showID", show.ID)
	}
	return nil
}

func (r *Repository) DeleteShow(ctx context.Context, ref schedule.Ref) error {
	const op = "ScheduleRepository.DeleteShow"
	return r.delete(ctx, op, `DELETE FROM shows WHERE id = $1 AND recurring = $2`, ref)
}

func (r *Repository) FindPermission(ctx context.Context, id int64, recurring bool) (*schedule.Permission, error) {
	const op = "ScheduleRepository.FindPermission"

	var row permissionRow
	err := sqlx.GetContext(ctx, r.q, &row,
		`SELECT `+permissionColumns+` FROM permissions WHERE id = $1 AND recurring = $2`, id, recurring)
	if err != nil {
		return nil, r.mapError(err, op, "permissionID", id)
	}
	return row.toPermission(), nil
}

func (r *Repository) ListPermissions(ctx context.Context, filter schedule.PermissionFilter) ([]*schedule.Permission, error) {
	const op = "ScheduleRepository.ListPermissions"

	var rows []permissionRow
	err := sqlx.SelectContext(ctx, r.q, &rows,
		`SELECT `+permissionColumns+` FROM permissions
		WHERE device_id = $1 AND `+boundsOverlap+`
		AND ($4 = 0 OR user_id = $4)
		ORDER BY start_at, id`,
		filter.DeviceID, filter.Window.Start.UTC(), filter.Window.End().UTC(), filter.UserID)
	if err != nil {
		return nil, r.mapError(err, op, "deviceID", filter.DeviceID)
	}

	permissions := make([]*schedule.Permission, len(rows))
	for i, row := range rows {
		permissions[i] = row.toPermission()
	}
	return permissions, nil
}

func (r *Repository) SavePermission(ctx context.Context, p *schedule.Permission) error {
	const op = "ScheduleRepository.SavePermission"

	t := newTimingRow(p.Timing)
	var err error
	if p.ID == 0 {
		err = r.q.QueryRowxContext(ctx, `
			INSERT INTO permissions (
				user_id, device_id, description, mode, x_data, recurring,
				start_at, duration_seconds, stop_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at
		`,
			p.UserID, p.DeviceID, p.Description, t.Mode, t.XData, t.Recurring,
			t.StartAt, t.DurationSeconds, t.StopAt,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	} else {
		err = r.q.QueryRowxContext(ctx, `
			UPDATE permissions SET
				user_id = $2, device_id = $3, description = $4, mode = $5,
				x_data = $6, recurring = $7, start_at = $8,
				duration_seconds = $9, stop_at = $10
			WHERE id = $1
			RETURNING created_at, updated_at
		`,
			p.ID, p.UserID, p.DeviceID, p.Description, t.Mode,
			t.XData, t.Recurring, t.StartAt, t.DurationSeconds, t.StopAt,
		).Scan(&p.CreatedAt, &p.UpdatedAt)
	}
	if err != nil {
		return r.mapError(err, op, "permissionID", p.ID)
	}
	return nil
}

func (r *Repository) DeletePermission(ctx context.Context, ref schedule.Ref) error {
	const op = "ScheduleRepository.DeletePermission"
	return r.delete(ctx, op, `DELETE FROM permissions WHERE id = $1 AND recurring = $2`, ref)
}

func (r *Repository) delete(ctx context.Context, op, query string, ref schedule.Ref) error {
	result, err := r.q.ExecContext(ctx, query, ref.ID, ref.Recurring)
	if err != nil {
		return r.mapError(err, op, "id", ref.ID)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return r.mapError(err, op, "id", ref.ID)
	}
	if n == 0 {
		return database.MapError(sql.ErrNoRows, op)
	}
	return nil
}

// WithDeviceLock runs fn in a transaction holding the device row lock.
// Concurrent writers for the device queue on the lock until the
// transaction ends.
func (r *Repository) WithDeviceLock(ctx context.Context, deviceID int64, fn func(schedule.Repository) error) error {
	const op = "ScheduleRepository.WithDeviceLock"

	if r.db == nil {
		// Already bound to a locked transaction
		return fn(r)
	}

	return database.RunInTx(ctx, r.db, database.DeviceLock, func(tx *database.Tx) error {
		var locked int64
		err := tx.GetContext(ctx, &locked, `SELECT id FROM devices WHERE id = $1 FOR UPDATE`, deviceID)
		if err != nil {
			return r.mapError(err, op, "deviceID", deviceID)
		}
		return fn(&Repository{q: tx.Tx, logger: r.logger})
	})
}

func (r *Repository) mapError(err error, op, key string, id int64) error {
	mapped := database.MapError(err, op)
	if !errors.Is(err, sql.ErrNoRows) && !werrors.IsNotFound(mapped) {
		r.logger.Error("schedule query failed",
			"error", err,
			"operation", op,
			key, id,
		)
	}
	return mapped
}
