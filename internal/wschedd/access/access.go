// Package access models who is acting and which structured capabilities
// they hold.
package access

// Action names something an actor may be allowed to do.
type Action string

const (
	// ManageSchedulePermissions allows granting, editing and revoking
	// schedule permissions on a device. It also lets the holder edit and
	// delete other users' shows and schedule without a grant.
	ManageSchedulePermissions Action = "manage_schedule_permissions"
)

// AllDevices scopes a capability to every device.
const AllDevices int64 = 0

// Capability is an action scoped to a device.
type Capability struct {
	Action   Action `json:"action"`
	DeviceID int64  `json:"deviceId"`
}

// Actor is the authenticated caller of a schedule operation.
type Actor struct {
	UserID       int64
	Capabilities []Capability
}

// NewActor creates an actor holding caps.
func NewActor(userID int64, caps ...Capability) *Actor {
	return &Actor{UserID: userID, Capabilities: caps}
}

// Can reports whether the actor may perform action on deviceID.
func (a *Actor) Can(action Action, deviceID int64) bool {
	if a == nil {
		return false
	}
	for _, c := range a.Capabilities {
		if c.Action != action {
			continue
		}
		if c.DeviceID == AllDevices || c.DeviceID == deviceID {
			return true
		}
	}
	return false
}

// CanAnywhere reports whether the actor holds action on at least one device.
func (a *Actor) CanAnywhere(action Action) bool {
	if a == nil {
		return false
	}
	for _, c := range a.Capabilities {
		if c.Action == action {
			return true
		}
	}
	return false
}
