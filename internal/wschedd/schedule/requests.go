package schedule

// Requests carry caller input exactly as received. The service owns parsing
// and validation so malformed input is rejected before any storage access.

// ShowQuery lists show occurrences on a device. Start and End are Unix seconds.
type ShowQuery struct {
	Start  string
	End    string
	Device string
}

// PermissionQuery lists permission occurrences on a device. An empty UserID
// lists every grantee's permissions.
type PermissionQuery struct {
	Start  string
	End    string
	Device string
	UserID string
}

// DurationFields are the duration components of a save request
type DurationFields struct {
	Days    string
	Hours   string
	Minutes string
	Seconds string
}

// SaveShowRequest creates a show, or edits one when ID is set
type SaveShowRequest struct {
	ID string
	// EditRecurring selects the family the edited ID belongs to
	EditRecurring bool
	Device        string
	Mode          string
	XData         string
	Start         string
	Stop          string
	Duration      DurationFields
	ItemType      string
	ItemID        string
}

// SavePermissionRequest creates a permission grant, or edits one when ID is set
type SavePermissionRequest struct {
	ID            string
	EditRecurring bool
	Device        string
	// UserID is the grantee
	UserID      string
	Mode        string
	XData       string
	Start       string
	Stop        string
	Duration    DurationFields
	Description string
}

// SettingScope selects which "last device" setting is addressed
type SettingScope string

const (
	ScopeShows       SettingScope = "shows"
	ScopePermissions SettingScope = "permissions"
)

// SettingKey returns the per-user setting key backing the scope
func (s SettingScope) SettingKey() string {
	if s == ScopePermissions {
		return "last_schedule_permissions_device"
	}
	return "last_schedule_device"
}

// Valid reports whether s is a known scope
func (s SettingScope) Valid() bool {
	return s == ScopeShows || s == ScopePermissions
}
