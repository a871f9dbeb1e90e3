package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const (
	sessionKey    = "auth_session"
	sessionErrKey = "auth_session_error"
	tokenKey      = "auth_token"
)

var errNoSession = errors.New("no valid session")

// AuthMiddleware validates session tokens and loads the caller.
//
// Every request re-reads the user from the store: a deleted or deactivated
// account loses its sessions immediately, and the role used for gating is the
// stored role rather than the one captured in the token.
type AuthMiddleware struct {
	tokens     *TokenManager
	users      repository.UserRepository
	revoker    Revoker
	cookieName string
}

// NewAuthMiddleware constructs middleware. revoker may be nil.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, revoker Revoker, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, revoker: revoker, cookieName: cookieName}
}

// CookieName is the cookie carrying the session token for page requests.
func (m *AuthMiddleware) CookieName() string {
	return m.cookieName
}

// Load attaches the session when the request carries a valid token and lets
// anonymous requests through. When the session cannot be checked, for example
// because the revocation store is down, the request continues as anonymous and
// RequireSession or RequireRole fail it with that error.
func (m *AuthMiddleware) Load(c *fiber.Ctx) error {
	session, err := m.resolve(c)
	if err != nil && !errors.Is(err, errNoSession) {
		c.Locals(sessionErrKey, err)
		return c.Next()
	}
	if session != nil {
		c.Locals(sessionKey, session)
	}
	return c.Next()
}

// PageGate redirects page requests the policy does not authorize to the
// login entry point.
func (m *AuthMiddleware) PageGate(policy AccessPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if !policy.Protected(path) {
			return c.Next()
		}
		session, err := m.resolve(c)
		if err != nil && !errors.Is(err, errNoSession) {
			return err
		}
		if !policy.Authorized(path, session) {
			return c.Redirect(policy.LoginRedirect(c.OriginalURL()), fiber.StatusFound)
		}
		if session != nil {
			c.Locals(sessionKey, session)
		}
		return c.Next()
	}
}

func (m *AuthMiddleware) resolve(c *fiber.Ctx) (*domain.Session, error) {
	raw := m.tokenFromRequest(c)
	if raw == "" {
		return nil, errNoSession
	}
	claims, err := m.tokens.Parse(raw)
	if err != nil {
		return nil, errNoSession
	}
	session, err := m.verify(c.UserContext(), claims)
	if err != nil {
		return nil, err
	}
	c.Locals(tokenKey, claims)
	return session, nil
}

func (m *AuthMiddleware) verify(ctx context.Context, claims *Claims) (*domain.Session, error) {
	if m.revoker != nil {
		revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if revoked {
			return nil, errNoSession
		}
	}

	user, err := m.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errNoSession
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !user.Active {
		return nil, errNoSession
	}

	session := claims.Session()
	session.Name = user.Name
	session.Email = user.Email
	session.Role = user.Role
	return session, nil
}

func (m *AuthMiddleware) tokenFromRequest(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if m.cookieName != "" {
		return c.Cookies(m.cookieName)
	}
	return ""
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	session, ok := c.Locals(sessionKey).(*domain.Session)
	return session, ok && session != nil
}

// sessionError returns the failure recorded by Load, if any.
func sessionError(c *fiber.Ctx) error {
	err, _ := c.Locals(sessionErrKey).(error)
	return err
}

// ClaimsFromContext returns the parsed token claims of the current request.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(tokenKey).(*Claims)
	return claims, ok && claims != nil
}
