// Package v1alpha1 contains API types for the Wrale Scheduler.
package v1alpha1

import (
	"encoding/json"
	"time"
)

// Result is the envelope of every schedule API response
type Result struct {
	// Success reports whether the operation was carried out
	Success bool `json:"success"`
	// Message is a human-readable outcome or rejection reason
	Message string `json:"message"`
	// Code is a machine-readable error code, empty on success
	Code string `json:"code,omitempty"`
	// Data carries the operation's payload, if any
	Data json.RawMessage `json:"data,omitempty"`
}

// Show is a scheduled content placement. Instants are Unix seconds and
// durations whole seconds.
type Show struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	DeviceID  int64     `json:"device_id"`
	Mode      string    `json:"mode"`
	XData     string    `json:"x_data,omitempty"`
	Recurring bool      `json:"recurring"`
	Start     int64     `json:"start"`
	Duration  int64     `json:"duration"`
	Stop      int64     `json:"stop,omitempty"`
	ItemType  string    `json:"item_type"`
	ItemID    int64     `json:"item_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Permission grants a user the right to schedule shows on a device
type Permission struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	DeviceID    int64     `json:"device_id"`
	Description string    `json:"description,omitempty"`
	Mode        string    `json:"mode"`
	XData       string    `json:"x_data,omitempty"`
	Recurring   bool      `json:"recurring"`
	Start       int64     `json:"start"`
	Duration    int64     `json:"duration"`
	Stop        int64     `json:"stop,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Occurrence is one concrete window of a show or permission. ID and
// Recurring address the definition it was expanded from.
type Occurrence struct {
	Kind      string `json:"kind"`
	ID        int64  `json:"id"`
	Recurring bool   `json:"recurring"`
	UserID    int64  `json:"user_id"`
	DeviceID  int64  `json:"device_id"`
	// Start and Duration describe this occurrence
	Start    int64 `json:"start"`
	Duration int64 `json:"duration"`
	// Definition fields
	Mode        string `json:"mode"`
	XData       string `json:"x_data,omitempty"`
	FirstStart  int64  `json:"first_start"`
	Stop        int64  `json:"stop,omitempty"`
	ItemType    string `json:"item_type,omitempty"`
	ItemID      int64  `json:"item_id,omitempty"`
	Description string `json:"description,omitempty"`
}

// FriendlyShow is a show occurrence on a public schedule. It leaves out who
// scheduled the show.
type FriendlyShow struct {
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
	Duration  int64  `json:"duration"`
	Recurring bool   `json:"recurring"`
	ItemType  string `json:"item_type"`
	ItemID    int64  `json:"item_id,omitempty"`
}

// SaveShowRequest creates or edits a show. Fields are raw strings and are
// validated by the server.
type SaveShowRequest struct {
	ID              string `json:"id,omitempty"`
	EditRecurring   bool   `json:"edit_recurring,omitempty"`
	DeviceID        string `json:"device_id"`
	Mode            string `json:"mode"`
	XData           string `json:"x_data,omitempty"`
	Start           string `json:"start"`
	Stop            string `json:"stop,omitempty"`
	DurationDays    string `json:"duration_days,omitempty"`
	DurationHours   string `json:"duration_hours,omitempty"`
	DurationMinutes string `json:"duration_minutes,omitempty"`
	DurationSeconds string `json:"duration_seconds,omitempty"`
	ItemType        string `json:"item_type"`
	ItemID          string `json:"item_id,omitempty"`
}

// SavePermissionRequest creates or edits a permission grant
type SavePermissionRequest struct {
	ID              string `json:"id,omitempty"`
	EditRecurring   bool   `json:"edit_recurring,omitempty"`
	UserID          string `json:"user_id"`
	DeviceID        string `json:"device_id"`
	Mode            string `json:"mode"`
	XData           string `json:"x_data,omitempty"`
	Description     string `json:"description,omitempty"`
	Start           string `json:"start"`
	Stop            string `json:"stop,omitempty"`
	DurationDays    string `json:"duration_days,omitempty"`
	DurationHours   string `json:"duration_hours,omitempty"`
	DurationMinutes string `json:"duration_minutes,omitempty"`
	DurationSeconds string `json:"duration_seconds,omitempty"`
}

// LastDevice is the device a user last worked with
type LastDevice struct {
	Device int64 `json:"device"`
}

// SetLastDeviceRequest remembers a device
type SetLastDeviceRequest struct {
	Device string `json:"device"`
}

// Device is a playback device schedules are written for
type Device struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	SiteID   string `json:"site_id,omitempty"`
	Zone     string `json:"zone,omitempty"`
	Position string `json:"position,omitempty"`
}
