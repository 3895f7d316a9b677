// ABOUTME: Maps the session read model to the view the user should see
// ABOUTME: Pure function; unrecognised roles get an explicit fallback view

package router

import "github.com/markalston/cabdesk/internal/session"

// View identifies a top-level screen
type View int

const (
	ViewLoading View = iota
	ViewLogin
	ViewRegister
	ViewAdmin
	ViewHR
	ViewDriver
	ViewUnknownRole
)

func (v View) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewLogin:
		return "login"
	case ViewRegister:
		return "register"
	case ViewAdmin:
		return "admin"
	case ViewHR:
		return "hr"
	case ViewDriver:
		return "driver"
	case ViewUnknownRole:
		return "unknown-role"
	}
	return "invalid"
}

// IsDashboard reports whether v belongs to a logged-in user
func (v View) IsDashboard() bool {
	return v == ViewAdmin || v == ViewHR || v == ViewDriver || v == ViewUnknownRole
}

// Route picks the view for snap. showRegister toggles between the login and
// registration views and is ignored once a user is logged in.
func Route(snap session.Snapshot, showRegister bool) View {
	switch snap.State {
	case session.StateLoading:
		return ViewLoading
	case session.StateAuthenticated:
		if snap.User == nil {
			return ViewLogin
		}
		return ForRole(snap.User.Role)
	}
	if showRegister {
		return ViewRegister
	}
	return ViewLogin
}

// ForRole returns the dashboard for role
func ForRole(role session.Role) View {
	switch role {
	case session.RoleAdmin:
		return ViewAdmin
	case session.RoleHR:
		return ViewHR
	case session.RoleDriver:
		return ViewDriver
	}
	return ViewUnknownRole
}
