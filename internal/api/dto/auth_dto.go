package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// RegisterRequest payload for new customers.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,max=120"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionUser is the public view of the signed-in user.
type SessionUser struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// AuthResponse standard response for login.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      SessionUser `json:"user"`
}

// SessionResponse describes the current session. User is omitted for
// anonymous callers.
type SessionResponse struct {
	User *SessionUser `json:"user,omitempty"`
}

// NewSessionUser maps a user to its session view.
func NewSessionUser(u *domain.User) SessionUser {
	return SessionUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// SessionUserFromSession maps a session to its public view.
func SessionUserFromSession(s *domain.Session) *SessionUser {
	if !s.Authenticated() {
		return nil
	}
	return &SessionUser{ID: s.UserID, Name: s.Name, Email: s.Email, Role: s.Role}
}
