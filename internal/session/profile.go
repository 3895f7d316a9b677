// ABOUTME: User profile and the persisted session shape
// ABOUTME: Username is derived from the email, never entered separately at login

package session

import "strings"

// UserProfile describes the logged-in user
type UserProfile struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// NewUserProfile builds a profile from a login email and the server's role
func NewUserProfile(email, role string) UserProfile {
	return UserProfile{
		Email:    email,
		Username: DeriveUsername(email),
		Role:     ParseRole(role),
	}
}

// DeriveUsername returns the part of email before the first '@'.
// It is a display convenience, not a verified identity.
func DeriveUsername(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

// Session pairs a token with its user. Both are set or both are empty.
type Session struct {
	Token string
	User  *UserProfile
}

// Empty reports whether no user is logged in
func (s Session) Empty() bool {
	return s.Token == "" && s.User == nil
}

// Registration is the transient input to Manager.Register
type Registration struct {
	Username string
	Email    string
	Password string
	Role     Role
}
