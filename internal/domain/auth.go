package domain

import "time"

// Session is the authenticated caller as seen by handlers. A nil *Session
// means an anonymous request.
type Session struct {
	TokenID   string
	UserID    string
	Name      string
	Email     string
	Role      Role
	ExpiresAt time.Time
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// Authenticated reports whether s belongs to a signed-in user.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}
