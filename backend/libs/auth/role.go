package auth

import "fmt"

// Role is the closed set of principals known to the platform.
type Role string

const (
	RoleEVOwner         Role = "EVOwner"
	RoleStationOperator Role = "StationOperator"
	RoleBackOffice      Role = "BackOffice"
)

// ParseRole converts a wire value into a Role.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleEVOwner, RoleStationOperator, RoleBackOffice:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("auth: unknown role %q", raw)
	}
}

// IsStaff reports whether the role belongs to a back-office user account rather than an EV owner.
func (r Role) IsStaff() bool {
	switch r {
	case RoleStationOperator, RoleBackOffice:
		return true
	case RoleEVOwner:
		return false
	default:
		return false
	}
}

// CanManageStations covers creating, deleting and deactivating stations.
func (r Role) CanManageStations() bool {
	switch r {
	case RoleBackOffice:
		return true
	case RoleEVOwner, RoleStationOperator:
		return false
	default:
		return false
	}
}

// CanApproveBookings covers booking approval.
func (r Role) CanApproveBookings() bool {
	switch r {
	case RoleBackOffice, RoleStationOperator:
		return true
	case RoleEVOwner:
		return false
	default:
		return false
	}
}

// CanOperateChargers covers QR scanning, check-in and check-out.
func (r Role) CanOperateChargers() bool {
	switch r {
	case RoleStationOperator:
		return true
	case RoleEVOwner, RoleBackOffice:
		return false
	default:
		return false
	}
}

// CanEditBookingStatus reports whether the role may set status and operator notes through a
// booking update. EV owners are limited to rescheduling.
func (r Role) CanEditBookingStatus() bool {
	switch r {
	case RoleBackOffice, RoleStationOperator:
		return true
	case RoleEVOwner:
		return false
	default:
		return false
	}
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
