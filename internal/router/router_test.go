package router

import (
	"testing"

	"github.com/markalston/cabdesk/internal/session"
)

func authed(role session.Role) session.Snapshot {
	return session.Snapshot{
		State: session.StateAuthenticated,
		User:  &session.UserProfile{Email: "u@corp.com", Username: "u", Role: role},
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name         string
		snap         session.Snapshot
		showRegister bool
		want         View
	}{
		{"loading", session.Snapshot{State: session.StateLoading}, false, ViewLoading},
		{"loading ignores register toggle", session.Snapshot{State: session.StateLoading}, true, ViewLoading},
		{"logged out", session.Snapshot{State: session.StateUnauthenticated}, false, ViewLogin},
		{"logged out register", session.Snapshot{State: session.StateUnauthenticated}, true, ViewRegister},
		{"admin", authed(session.RoleAdmin), false, ViewAdmin},
		{"hr", authed(session.RoleHR), false, ViewHR},
		{"driver", authed(session.RoleDriver), true, ViewDriver},
		{"unknown", authed(session.RoleUnknown), false, ViewUnknownRole},
		{"absent role", authed(""), false, ViewUnknownRole},
		{"server role manager", authed(session.ParseRole("MANAGER")), false, ViewUnknownRole},
		{"authenticated without user", session.Snapshot{State: session.StateAuthenticated}, false, ViewLogin},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Route(tc.snap, tc.showRegister); got != tc.want {
				t.Errorf("Route() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestView_IsDashboard(t *testing.T) {
	for _, v := range []View{ViewAdmin, ViewHR, ViewDriver, ViewUnknownRole} {
		if !v.IsDashboard() {
			t.Errorf("expected %v to be a dashboard", v)
		}
	}
	for _, v := range []View{ViewLoading, ViewLogin, ViewRegister} {
		if v.IsDashboard() {
			t.Errorf("expected %v not to be a dashboard", v)
		}
	}
}
