package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/mailer"
	"github.com/spec-kit/support-desk/internal/repository/repotest"
)

func testConfig() config.Config {
	return config.Config{
		App: config.AppConfig{PublicURL: "https://desk.example.com"},
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
		},
		Mail: config.MailConfig{FromName: "Support Desk"},
	}
}

func sessionFor(u *domain.User) *domain.Session {
	return &domain.Session{TokenID: "tok-" + u.ID, UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func seedUser(t *testing.T, users *repotest.Users, name, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: email, Role: role, Active: true}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) messages() []mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mailer.Message(nil), s.sent...)
}

type stubNotifier struct {
	err     error
	greeted []string
}

func (n *stubNotifier) SendWelcome(_ context.Context, user *domain.User) error {
	if n.err != nil {
		return n.err
	}
	n.greeted = append(n.greeted, user.Email)
	return nil
}

type memoryRevoker struct {
	revoked map[string]time.Time
}

func (r *memoryRevoker) Revoke(_ context.Context, id string, expiresAt time.Time) error {
	if id == "" {
		return errors.New("empty token id")
	}
	r.revoked[id] = expiresAt
	return nil
}

func (r *memoryRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := r.revoked[id]
	return ok, nil
}
