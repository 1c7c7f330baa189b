// Package websocket streams schedule events to connected clients, one
// subscription per device.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wrale/wrale-scheduler/internal/wschedd/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	sendBuffer = 64
)

// ErrHubClosed is returned after the hub stopped running
var ErrHubClosed = errors.New("event hub closed")

type message struct {
	deviceID int64
	payload  []byte
}

// connection is a subscriber on one device
type connection struct {
	deviceID int64
	ws       *websocket.Conn
	send     chan []byte
	hub      *Hub
}

// Hub tracks subscribers per device and fans events out to them
type Hub struct {
	upgrader    websocket.Upgrader
	connections map[int64]map[*connection]bool
	register    chan *connection
	unregister  chan *connection
	publish     chan message
	done        chan struct{}
	logger      *slog.Logger
}

// NewHub creates a hub. checkOrigin may be nil to accept every origin.
func NewHub(logger *slog.Logger, checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		connections: make(map[int64]map[*connection]bool),
		register:    make(chan *connection),
		unregister:  make(chan *connection),
		publish:     make(chan message),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Run owns the subscriber set until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for _, conns := range h.connections {
			for c := range conns {
				close(c.send)
			}
		}
		h.connections = nil
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			if h.connections[c.deviceID] == nil {
				h.connections[c.deviceID] = make(map[*connection]bool)
			}
			h.connections[c.deviceID][c] = true
			h.logger.Info("schedule subscriber connected",
				"deviceID", c.deviceID,
				"subscribers", len(h.connections[c.deviceID]),
			)
		case c := <-h.unregister:
			h.remove(c)
		case m := <-h.publish:
			for c := range h.connections[m.deviceID] {
				select {
				case c.send <- m.payload:
				default:
					h.logger.Warn("dropping slow schedule subscriber", "deviceID", c.deviceID)
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *connection) {
	conns := h.connections[c.deviceID]
	if !conns[c] {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.connections, c.deviceID)
	}
	h.logger.Info("schedule subscriber disconnected", "deviceID", c.deviceID)
}

// Publish sends event to the device's subscribers
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	select {
	case h.publish <- message{deviceID: event.DeviceID, payload: payload}:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Serve upgrades the request and streams deviceID's events until either
// side closes
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, deviceID int64) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			"error", err,
			"deviceID", deviceID,
		)
		return
	}

	c := &connection{
		deviceID: deviceID,
		ws:       ws,
		send:     make(chan []byte, sendBuffer),
		hub:      h,
	}
	select {
	case h.register <- c:
	case <-h.done:
		ws.Close()
		return
	}

	go c.writePump()
	c.readPump()
}

// readPump discards client messages and detects disconnects
func (c *connection) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("websocket read error",
					"error", err,
					"deviceID", c.deviceID,
				)
			}
			return
		}
	}
}

func (c *connection) write(mt int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(mt, payload)
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.write(websocket.TextMessage, payload); err != nil {
				c.hub.logger.Debug("failed to write event",
					"error", err,
					"deviceID", c.deviceID,
				)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
