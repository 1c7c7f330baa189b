package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-scheduler/internal/wschedd/events"
)

func TestPublisher(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	pub := NewPublisher(client, "wsched")
	assert.Equal(t, "wsched:devices:4:schedule", pub.Channel(4))

	sub := client.Subscribe(ctx, pub.Channel(4))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	sent := events.Event{Type: events.ShowSaved, DeviceID: 4, EntryID: 9, UserID: 2, Timestamp: time.Unix(1700000000, 0).UTC()}
	require.NoError(t, pub.Publish(ctx, sent))

	select {
	case msg := <-sub.Channel():
		var got events.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, sent, got)
	case <-ctx.Done():
		t.Fatal("event not received")
	}
}
