package schedule

import (
	"context"

	"github.com/wrale/wrale-scheduler/internal/wschedd/access"
	"github.com/wrale/wrale-scheduler/internal/wschedd/timerange"
)

// ShowFilter selects shows on a device whose occurrences may touch Window
type ShowFilter struct {
	DeviceID int64
	Window   timerange.Range
}

// PermissionFilter selects permissions on a device whose occurrences may
// touch Window. A zero UserID matches every grantee.
type PermissionFilter struct {
	DeviceID int64
	UserID   int64
	Window   timerange.Range
}

// ShowRepository defines persistence for shows
type ShowRepository interface {
	// FindShow retrieves a show from the one-off or recurring family
	FindShow(ctx context.Context, id int64, recurring bool) (*Show, error)

	// ListShows retrieves every show whose definition bounds intersect the
	// filter window. Callers expand them to find actual occurrences.
	ListShows(ctx context.Context, filter ShowFilter) ([]*Show, error)

	// SaveShow inserts a show when its ID is zero and updates it otherwise
	SaveShow(ctx context.Context, show *Show) error

	// DeleteShow removes a show
	DeleteShow(ctx context.Context, ref Ref) error
}

// PermissionRepository defines persistence for permission grants
type PermissionRepository interface {
	FindPermission(ctx context.Context, id int64, recurring bool) (*Permission, error)
	ListPermissions(ctx context.Context, filter PermissionFilter) ([]*Permission, error)
	SavePermission(ctx context.Context, permission *Permission) error
	DeletePermission(ctx context.Context, ref Ref) error
}

// Repository combines show and permission persistence
type Repository interface {
	ShowRepository
	PermissionRepository

	// WithDeviceLock runs fn with a repository bound to a single
	// transaction that holds the device's schedule lock. Concurrent
	// callers for the same device are serialized; fn's writes commit only
	// when it returns nil.
	WithDeviceLock(ctx context.Context, deviceID int64, fn func(Repository) error) error
}

// Service defines the schedule operations. Every method receives the acting
// user explicitly; a nil actor is rejected as unauthorized.
type Service interface {
	// GetShow retrieves a one-off or recurring show
	GetShow(ctx context.Context, actor *access.Actor, id string, recurring bool) (*Show, error)

	// GetPermission retrieves a one-off or recurring permission grant
	GetPermission(ctx context.Context, actor *access.Actor, id string, recurring bool) (*Permission, error)

	// Shows lists show occurrences on a device within a window
	Shows(ctx context.Context, actor *access.Actor, query ShowQuery) ([]ShowOccurrence, error)

	// FriendlySchedule lists show occurrences on a device for public display
	FriendlySchedule(ctx context.Context, query ShowQuery) ([]ShowOccurrence, error)

	// Permissions lists permission occurrences on a device within a window
	Permissions(ctx context.Context, actor *access.Actor, query PermissionQuery) ([]PermissionOccurrence, error)

	// SaveShow creates or edits a show
	SaveShow(ctx context.Context, actor *access.Actor, req SaveShowRequest) (*Show, error)

	// SavePermission creates or edits a permission grant
	SavePermission(ctx context.Context, actor *access.Actor, req SavePermissionRequest) (*Permission, error)

	// DeleteShow removes a show
	DeleteShow(ctx context.Context, actor *access.Actor, id string, recurring bool) error

	// DeletePermission removes a permission grant
	DeletePermission(ctx context.Context, actor *access.Actor, id string, recurring bool) error

	// SetLastDevice remembers the device the actor last worked with
	SetLastDevice(ctx context.Context, actor *access.Actor, scope SettingScope, device string) error

	// LastDevice returns the device remembered by SetLastDevice
	LastDevice(ctx context.Context, actor *access.Actor, scope SettingScope) (int64, error)
}
