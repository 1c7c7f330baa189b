package websocket

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wrale/wrale-scheduler/internal/wschedd/events"
)

func TestHubDeliversToDeviceSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		device := int64(1)
		if r.URL.Query().Get("device") == "2" {
			device = 2
		}
		hub.Serve(w, r, device)
	}))
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	dial := func(device string) *websocket.Conn {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?device="+device, nil)
		require.NoError(t, err)
		return conn
	}
	one := dial("1")
	two := dial("2")

	received := make(chan events.Event, 1)
	go func() {
		var got events.Event
		if err := one.ReadJSON(&got); err == nil {
			received <- got
		}
	}()

	// Publishes before the hub processed the registration reach nobody,
	// so keep publishing until one arrives.
	var got events.Event
	require.Eventually(t, func() bool {
		if err := hub.Publish(ctx, events.Event{Type: events.ShowSaved, DeviceID: 1, EntryID: 42}); err != nil {
			return false
		}
		select {
		case got = <-received:
			return true
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(42), got.EntryID)

	// Device 2 saw nothing.
	_ = two.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := two.ReadMessage()
	assert.Error(t, err)

	cancel()
	<-stopped
	assert.ErrorIs(t, hub.Publish(context.Background(), events.Event{DeviceID: 1}), ErrHubClosed)

	one.Close()
	two.Close()
	srv.Close()
}
