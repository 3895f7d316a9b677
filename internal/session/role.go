// ABOUTME: Closed role set and the mapping from untrusted server strings
// ABOUTME: Unrecognised values collapse to RoleUnknown at the boundary

package session

import "strings"

// Role is one of the roles the client knows how to render
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleHR      Role = "HR"
	RoleDriver  Role = "DRIVER"
	RoleUnknown Role = "UNKNOWN"
)

// AssignableRoles are the roles a user may register with
var AssignableRoles = []Role{RoleAdmin, RoleHR, RoleDriver}

// ParseRole maps a server-supplied role string into the closed set
func ParseRole(s string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleHR:
		return RoleHR
	case RoleDriver:
		return RoleDriver
	default:
		return RoleUnknown
	}
}

// Known reports whether r is one of ADMIN, HR, DRIVER
func (r Role) Known() bool {
	return r == RoleAdmin || r == RoleHR || r == RoleDriver
}

func (r Role) String() string {
	return string(r)
}

// UnmarshalText keeps stored or decoded roles inside the closed set
func (r *Role) UnmarshalText(text []byte) error {
	*r = ParseRole(string(text))
	return nil
}
