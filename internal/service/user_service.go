package service

import (
	"context"
	"strings"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// UserService manages accounts on behalf of administrators and the users
// themselves.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, users repository.UserRepository) *UserService {
	return &UserService{users: users, bcryptCost: cfg.Auth.BcryptCost}
}

// UserCreateInput is the admin form for new accounts.
type UserCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	Phone    string
	Address  *domain.Address
}

// UserUpdateInput carries profile changes. Nil means unchanged.
type UserUpdateInput struct {
	Name    *string
	Email   *string
	Role    *domain.Role
	Phone   *string
	Address *domain.Address
	Active  *bool
}

// List returns every user without password hashes.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return users, nil
}

// Create adds an account with a hashed password.
func (s *UserService) Create(ctx context.Context, in UserCreateInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperrors.NewValidationError("name, email and password are required", nil)
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Phone:        strings.TrimSpace(in.Phone),
		Active:       true,
	}
	if in.Address != nil {
		user.Address = *in.Address
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError(err, "user")
	}
	user.PasswordHash = ""
	return user, nil
}

// Get returns a user to an admin or to the user themselves.
func (s *UserService) Get(ctx context.Context, session *domain.Session, id string) (*domain.User, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	id, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() && session.UserID != id {
		return nil, apperrors.NewForbidden("access denied")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

// Update changes a profile. Admins may change every field; users editing
// themselves may change only name, phone and address, other fields are
// ignored.
func (s *UserService) Update(ctx context.Context, session *domain.Session, id string, in UserUpdateInput) (*domain.User, error) {
	user, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", nil)
		}
		user.Name = name
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		user.Address = *in.Address
	}

	if session.IsAdmin() {
		if in.Email != nil {
			email := normalizeEmail(*in.Email)
			if email == "" {
				return nil, apperrors.NewValidationError("email cannot be empty", nil)
			}
			user.Email = email
		}
		if in.Role != nil {
			if !in.Role.Valid() {
				return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *in.Role})
			}
			user.Role = *in.Role
		}
		if in.Active != nil {
			user.Active = *in.Active
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

// Delete removes an account. Tickets and comments it authored remain.
func (s *UserService) Delete(ctx context.Context, id string) error {
	id, err := parseID(id, "user")
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return storeError(err, "user")
	}
	return nil
}
