package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-scheduler/internal/wschedd/ratelimit"
)

func TestStoreWindows(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewStore(client)
	key := ratelimit.LimitKey{Type: ratelimit.TypeAPIRequest, Token: "tok"}
	limit := ratelimit.Limit{Rate: 2, Period: time.Minute}

	status, err := store.Increment(ctx, key, limit)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Count)
	assert.Equal(t, 1, status.Remaining)
	assert.Equal(t, time.Minute, mr.TTL("wsched:rate:api_request:tok:"))

	_, err = store.Increment(ctx, key, limit)
	require.NoError(t, err)
	_, err = store.Increment(ctx, key, limit)
	assert.ErrorIs(t, err, ratelimit.ErrLimitExceeded)

	mr.FastForward(time.Minute)
	status, err = store.Increment(ctx, key, limit)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Count)

	require.NoError(t, store.Reset(ctx, key))
	assert.False(t, mr.Exists("wsched:rate:api_request:tok:"))
}
