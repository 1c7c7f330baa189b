// Package postgres implements content lookups using PostgreSQL
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wrale/wrale-scheduler/internal/wschedd/database"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
)

type repository struct {
	db *sqlx.DB
}

// NewRepository creates a new PostgreSQL content repository
func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

var tables = map[schedule.ItemType]string{
	schedule.ItemMedia:    "media",
	schedule.ItemPlaylist: "playlists",
}

func (r *repository) ItemExists(ctx context.Context, itemType schedule.ItemType, id int64) (bool, error) {
	const op = "ContentRepository.ItemExists"

	if !itemType.NeedsID() {
		return itemType.Valid(), nil
	}
	table, ok := tables[itemType]
	if !ok {
		return false, nil
	}

	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, table)
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, database.MapError(err, op)
	}
	return exists, nil
}
