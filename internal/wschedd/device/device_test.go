package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(
		&Device{ID: 2, Name: "studio-b"},
		&Device{ID: 1, Name: "studio-a", Location: Location{SiteID: "hq"}},
	)

	d, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "hq", d.Location.SiteID)

	_, err = repo.FindByID(ctx, 3)
	assert.Equal(t, ErrNotFound{ID: 3}, err)

	ok, err := repo.Exists(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "studio-a", list[0].Name)
}
