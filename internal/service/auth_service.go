package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// WelcomeNotifier sends the greeting mail to freshly registered users.
type WelcomeNotifier interface {
	SendWelcome(ctx context.Context, user *domain.User) error
}

// AuthService coordinates registration, sign-in and sign-out.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	revoker    auth.Revoker
	notifier   WelcomeNotifier
	bcryptCost int
	logger     *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Revoker  auth.Revoker
	Notifier WelcomeNotifier
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		revoker:    deps.Revoker,
		notifier:   deps.Notifier,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// RegisterResult reports the new account and whether the welcome mail went out.
type RegisterResult struct {
	User        *domain.User
	WelcomeSent bool
}

// Register creates a customer account. A failing welcome mail does not undo it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" || in.PasswordConfirm == "" {
		return nil, apperrors.NewValidationError("name, email, password and password_confirm are required", nil)
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Password != in.PasswordConfirm {
		return nil, apperrors.NewValidationError("passwords do not match", nil)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError(err, "user")
	}
	user.PasswordHash = ""

	result := &RegisterResult{User: user}
	if s.notifier != nil {
		if err := s.notifier.SendWelcome(ctx, user); err != nil {
			s.logger.Warn("welcome email failed", zap.String("user_id", user.ID), zap.Error(err))
		} else {
			result.WelcomeSent = true
		}
	}
	return result, nil
}

// VerifyCredentials checks an email and password pair. Unknown accounts,
// inactive accounts and wrong passwords all yield ErrInvalidCredentials.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.burnComparison(password)
			return nil, ErrInvalidCredentials
		}
		return nil, apperrors.NewInternalError(err)
	}
	if user.PasswordHash == "" || !user.Active {
		s.burnComparison(password)
		return nil, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// burnComparison spends a bcrypt comparison so unknown emails take as long
// as wrong passwords.
func (s *AuthService) burnComparison(password string) {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword("support-desk-placeholder", s.bcryptCost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	if s.dummyHash != "" {
		_ = auth.ComparePassword(s.dummyHash, password)
	}
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *auth.IssuedToken, error) {
	user, err := s.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	token, err := s.tokenMgr.Issue(user)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, token, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || s.revoker == nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// SeedAdminInput describes the bootstrap administrator.
type SeedAdminInput struct {
	Name     string
	Email    string
	Password string
}

// SeedAdmin creates the administrator account unless one with that email
// already exists. The boolean reports whether a user was created.
func (s *AuthService) SeedAdmin(ctx context.Context, in SeedAdminInput) (*domain.User, bool, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, false, apperrors.NewValidationError("admin email and password are required", nil)
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, false, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, false, apperrors.NewInternalError(err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Administrator"
	}
	admin := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Active:       true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, false, storeError(err, "user")
	}
	admin.PasswordHash = ""
	return admin, true, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
