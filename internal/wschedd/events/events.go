// Package events announces committed schedule changes to interested
// parties such as playback devices and open editors.
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Type names a schedule change
type Type string

const (
	ShowSaved         Type = "SHOW_SAVED"
	ShowDeleted       Type = "SHOW_DELETED"
	PermissionSaved   Type = "PERMISSION_SAVED"
	PermissionDeleted Type = "PERMISSION_DELETED"
)

// Event describes one committed change on a device's schedule
type Event struct {
	Type      Type      `json:"type"`
	DeviceID  int64     `json:"deviceId"`
	EntryID   int64     `json:"entryId"`
	Recurring bool      `json:"recurring"`
	UserID    int64     `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers events
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Multi fans an event out to several publishers
type Multi struct {
	publishers []Publisher
	logger     *slog.Logger
}

// NewMulti creates a publisher delivering to every non-nil publisher
func NewMulti(logger *slog.Logger, publishers ...Publisher) *Multi {
	m := &Multi{logger: logger}
	for _, p := range publishers {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
	return m
}

// Publish delivers event to every publisher, even when some fail
func (m *Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, event); err != nil {
			m.logger.Warn("event delivery failed",
				"error", err,
				"publisher", fmt.Sprintf("%T", p),
				"type", event.Type,
				"deviceID", event.DeviceID,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Topic returns the per-device channel name used by broker publishers
func Topic(prefix string, deviceID int64) string {
	return fmt.Sprintf("%s/devices/%d/schedule", prefix, deviceID)
}
