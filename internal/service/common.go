package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// ErrInvalidCredentials is returned for every failed sign-in, whatever the cause.
var ErrInvalidCredentials = apperrors.NewUnauthorized("invalid credentials")

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// parseID accepts only the hyphenated 36-character UUID form and returns it in
// lower case, the form the stores and sessions use. uuid.Parse alone also
// accepts urn:uuid:, braced and undashed spellings.
func parseID(id, resource string) (string, error) {
	if len(id) != 36 {
		return "", apperrors.NewInvalidID(resource)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", apperrors.NewInvalidID(resource)
	}
	return parsed.String(), nil
}

// validatePassword enforces the length bounds bcrypt can hash.
func validatePassword(password string) error {
	if len(password) < auth.MinPasswordLength {
		return apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength), nil)
	}
	if len(password) > auth.MaxPasswordLength {
		return apperrors.NewValidationError(fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordLength), nil)
	}
	return nil
}

func storeError(err error, resource string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.NewConflict("email already registered", nil)
	default:
		return apperrors.NewInternalError(err)
	}
}

func requireSession(session *domain.Session) error {
	if !session.Authenticated() {
		return apperrors.NewUnauthorized("authentication required")
	}
	return nil
}

func requireAdmin(session *domain.Session) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if !session.IsAdmin() {
		return apperrors.NewForbidden("insufficient role")
	}
	return nil
}

func strPtr(s string) *string {
	return &s
}
