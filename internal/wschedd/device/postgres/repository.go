// Package postgres implements the device repository using PostgreSQL
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/wrale/wrale-scheduler/internal/wschedd/database"
	"github.com/wrale/wrale-scheduler/internal/wschedd/device"
)

// Repository implements the device.Repository interface using PostgreSQL
type Repository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL device repository
func NewRepository(db *sqlx.DB, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

type deviceRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	SiteID    string    `db:"site_id"`
	Zone      string    `db:"zone"`
	Position  string    `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}

func (row deviceRow) toDevice() *device.Device {
	return &device.Device{
		ID:   row.ID,
		Name: row.Name,
		Location: device.Location{
			SiteID:   row.SiteID,
			Zone:     row.Zone,
			Position: row.Position,
		},
		CreatedAt: row.CreatedAt,
	}
}

const selectDevice = `SELECT id, name, site_id, zone, position, created_at FROM devices`

// FindByID retrieves a device by its identifier
func (r *Repository) FindByID(ctx context.Context, id int64) (*device.Device, error) {
	const op = "DeviceRepository.FindByID"

	var row deviceRow
	if err := r.db.GetContext(ctx, &row, selectDevice+` WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, device.ErrNotFound{ID: id}
		}
		r.logger.Error("failed to query device",
			"error", err,
			"deviceID", id,
			"operation", op,
		)
		return nil, database.MapError(err, op)
	}
	return row.toDevice(), nil
}

// Exists reports whether a device with the identifier exists
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	const op = "DeviceRepository.Exists"

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM devices WHERE id = $1)`, id); err != nil {
		return false, database.MapError(err, op)
	}
	return exists, nil
}

// List retrieves every device ordered by name
func (r *Repository) List(ctx context.Context) ([]*device.Device, error) {
	const op = "DeviceRepository.List"

	var rows []deviceRow
	if err := r.db.SelectContext(ctx, &rows, selectDevice+` ORDER BY name`); err != nil {
		r.logger.Error("failed to list devices",
			"error", err,
			"operation", op,
		)
		return nil, database.MapError(err, op)
	}

	devices := make([]*device.Device, len(rows))
	for i, row := range rows {
		devices[i] = row.toDevice()
	}
	return devices, nil
}
