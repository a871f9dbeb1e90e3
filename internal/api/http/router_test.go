package http

import (
	"bytes"
	"context"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/mailer"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/repository/repotest"
	"github.com/spec-kit/support-desk/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type testServer struct {
	app     *fiber.App
	authSvc *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		App: config.AppConfig{Name: "support-desk", PublicURL: "https://desk.example.com"},
		Auth: config.AuthConfig{
			JWTSecret:             "router-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
			CookieName:            "desk_session",
		},
	}
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	users := repotest.NewUsers()
	tickets := repotest.NewTickets()
	comments := repotest.NewComments()
	dispatcher := events.NewInMemoryDispatcher(logger)

	renderer, err := mailer.NewRenderer()
	require.NoError(t, err)
	notify := service.NewNotificationService(cfg, service.NotificationDependencies{
		Dispatcher: dispatcher,
		Sender:     mailer.NewSender(cfg.Mail, logger),
		Renderer:   renderer,
		UserRepo:   users,
		Metrics:    metrics,
	})
	notify.RegisterHandlers()

	authSvc := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: users, Notifier: notify})
	ticketSvc := service.NewTicketService(service.TicketDependencies{TicketRepo: tickets, UserRepo: users, Dispatcher: dispatcher})
	commentSvc := service.NewCommentService(service.CommentDependencies{CommentRepo: comments, TicketRepo: tickets, Dispatcher: dispatcher})

	app := NewApp(cfg.App.Name, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("support-desk", "test", map[string]handlers.Pinger{"postgres": nil}),
		Auth:           handlers.NewAuthHandler(authSvc, handlers.CookieSettings{Name: cfg.Auth.CookieName}),
		Tickets:        handlers.NewTicketsHandler(ticketSvc),
		Comments:       handlers.NewCommentsHandler(commentSvc),
		Users:          handlers.NewUsersHandler(service.NewUserService(cfg, users)),
		Admin:          handlers.NewAdminHandler(service.NewStatsService(tickets, users, comments), notify),
		AuthMiddleware: auth.NewAuthMiddleware(authSvc.TokenManager(), users, nil, cfg.Auth.CookieName),
		Policy:         auth.AccessPolicy{AdminPrefixes: []string{"/admin"}, DashboardPrefixes: []string{"/dashboard"}},
		Metrics:        metrics,
	})
	return &testServer{app: app, authSvc: authSvc}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	status, env := s.do(t, nethttp.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, nethttp.StatusOK, status, env.Error)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func (s *testServer) seedAdmin(t *testing.T) string {
	t.Helper()
	_, _, err := s.authSvc.SeedAdmin(context.Background(), service.SeedAdminInput{Email: "admin@x.com", Password: "admin123"})
	require.NoError(t, err)
	return s.login(t, "admin@x.com", "admin123")
}

func decode(t *testing.T, raw json.RawMessage, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out), string(raw))
}

func TestCustomerCannotUpdateTicketButAdminCan(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, nethttp.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "email": "ana@x.com", "password": "secret1", "password_confirm": "secret1",
	})
	require.Equal(t, nethttp.StatusCreated, status, env.Error)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Message)
	assert.NotContains(t, string(env.Data), "password")

	status, env = s.do(t, nethttp.MethodPost, "/api/auth/login", "", map[string]string{"email": "ana@x.com", "password": "wrong"})
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid credentials", env.Error)

	anaToken := s.login(t, "ana@x.com", "secret1")
	status, env = s.do(t, nethttp.MethodGet, "/api/auth/session", anaToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	var session struct {
		User struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	decode(t, env.Data, &session)
	assert.Equal(t, "customer", session.User.Role)

	status, env = s.do(t, nethttp.MethodPost, "/api/tickets", anaToken, map[string]string{"title": "Printer", "description": "jammed"})
	require.Equal(t, nethttp.StatusCreated, status, env.Error)
	var ticket struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, env.Data, &ticket)

	status, env = s.do(t, nethttp.MethodPut, "/api/tickets/"+ticket.ID, anaToken, map[string]string{"status": "closed"})
	assert.Equal(t, nethttp.StatusForbidden, status)
	assert.False(t, env.Success)

	adminToken := s.seedAdmin(t)
	status, env = s.do(t, nethttp.MethodPut, "/api/tickets/"+ticket.ID, adminToken, map[string]interface{}{
		"status":     "in_progress",
		"created_by": "someone-else",
		"is_public":  true,
	})
	require.Equal(t, nethttp.StatusOK, status, env.Error)
	var updated struct {
		Status    string `json:"status"`
		IsPublic  bool   `json:"is_public"`
		CreatedBy string `json:"created_by"`
	}
	decode(t, env.Data, &updated)
	assert.Equal(t, "in_progress", updated.Status)
	assert.False(t, updated.IsPublic)
	assert.NotEqual(t, "someone-else", updated.CreatedBy)
}

func TestAnonymousAndRoleGates(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, nethttp.MethodGet, "/api/tickets", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "authentication required", env.Error)

	status, env = s.do(t, nethttp.MethodGet, "/api/auth/session", "", nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "{}", string(env.Data))

	_, _ = s.do(t, nethttp.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "email": "ana@x.com", "password": "secret1", "password_confirm": "secret1",
	})
	anaToken := s.login(t, "ana@x.com", "secret1")
	for _, path := range []string{"/api/users", "/api/tickets/admin/all", "/api/admin/stats"} {
		status, _ = s.do(t, nethttp.MethodGet, path, anaToken, nil)
		assert.Equal(t, nethttp.StatusForbidden, status, path)
	}

	status, _ = s.do(t, nethttp.MethodGet, "/api/tickets/not-a-uuid", anaToken, nil)
	assert.Equal(t, nethttp.StatusBadRequest, status)

	status, env = s.do(t, nethttp.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.False(t, env.Success)
}

func TestRegisterValidationMessages(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, nethttp.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "email": "ana@x.com", "password": "secret1", "password_confirm": "other12",
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "passwords do not match", env.Error)

	_, _ = s.do(t, nethttp.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "email": "ana@x.com", "password": "secret1", "password_confirm": "secret1",
	})
	status, _ = s.do(t, nethttp.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "email": "ANA@x.com", "password": "secret1", "password_confirm": "secret1",
	})
	assert.Equal(t, nethttp.StatusConflict, status)

	status, _ = s.do(t, nethttp.MethodPost, "/api/auth/login", "", map[string]string{"email": "ana@x.com"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
}

func TestPublicTicketLookupAndRepeatDelete(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.seedAdmin(t)

	status, env := s.do(t, nethttp.MethodPost, "/api/tickets/public", "", map[string]string{
		"name": "Carla", "email": "carla@x.com", "phone": "555", "title": "VPN", "description": "down",
	})
	require.Equal(t, nethttp.StatusCreated, status, env.Error)
	var created struct {
		TicketID string `json:"ticket_id"`
	}
	decode(t, env.Data, &created)
	require.NotEmpty(t, created.TicketID)

	status, env = s.do(t, nethttp.MethodGet, "/api/tickets/my-tickets?email=carla@x.com", "", nil)
	require.Equal(t, nethttp.StatusOK, status)
	var found []struct {
		ID       string `json:"id"`
		IsPublic bool   `json:"is_public"`
	}
	decode(t, env.Data, &found)
	require.Len(t, found, 1)
	assert.Equal(t, created.TicketID, found[0].ID)
	assert.True(t, found[0].IsPublic)

	status, _ = s.do(t, nethttp.MethodDelete, "/api/tickets/"+created.TicketID, adminToken, nil)
	assert.Equal(t, nethttp.StatusOK, status)
	for i := 0; i < 2; i++ {
		status, _ = s.do(t, nethttp.MethodDelete, "/api/tickets/"+created.TicketID, adminToken, nil)
		assert.Equal(t, nethttp.StatusNotFound, status)
	}
}

func TestUsersEndpointsNeverExposeHashes(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.seedAdmin(t)

	status, env := s.do(t, nethttp.MethodPost, "/api/users", adminToken, map[string]interface{}{
		"name": "Dana", "email": "dana@x.com", "password": "secret1",
		"address": map[string]string{"city": "Lima"},
	})
	require.Equal(t, nethttp.StatusCreated, status, env.Error)
	assert.NotContains(t, string(env.Data), "hash")
	assert.Contains(t, string(env.Data), `"role":"customer"`)

	status, env = s.do(t, nethttp.MethodGet, "/api/users", adminToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.NotContains(t, string(env.Data), "password")
	assert.NotContains(t, string(env.Data), "$2a$")
}

func TestCommentFlowAndImport(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.seedAdmin(t)
	_, _ = s.do(t, nethttp.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "email": "ana@x.com", "password": "secret1", "password_confirm": "secret1",
	})
	anaToken := s.login(t, "ana@x.com", "secret1")

	_, env := s.do(t, nethttp.MethodPost, "/api/tickets", anaToken, map[string]string{"title": "Mail", "description": "bounces"})
	var ticket struct {
		ID string `json:"id"`
	}
	decode(t, env.Data, &ticket)

	status, env := s.do(t, nethttp.MethodPost, "/api/comments", anaToken, map[string]string{"ticket_id": ticket.ID, "message": "any news?"})
	require.Equal(t, nethttp.StatusCreated, status, env.Error)

	status, env = s.do(t, nethttp.MethodPost, "/api/comments/import", adminToken, map[string]interface{}{
		"comments": []map[string]string{{"ticket_id": ticket.ID, "message": "one"}, {"ticket_id": ticket.ID, "message": "two"}},
	})
	require.Equal(t, nethttp.StatusCreated, status, env.Error)
	assert.JSONEq(t, `{"imported":2}`, string(env.Data))

	status, env = s.do(t, nethttp.MethodGet, "/api/comments?ticket_id="+ticket.ID, anaToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	var list []map[string]interface{}
	decode(t, env.Data, &list)
	assert.Len(t, list, 3)

	status, env = s.do(t, nethttp.MethodGet, "/api/admin/stats", adminToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	var stats struct {
		TotalComments int64 `json:"total_comments"`
		TotalUsers    int64 `json:"total_users"`
	}
	decode(t, env.Data, &stats)
	assert.EqualValues(t, 3, stats.TotalComments)
	assert.EqualValues(t, 2, stats.TotalUsers)
}

func TestPageGateAndProbes(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(nethttp.MethodGet, "/admin/tickets", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?callbackUrl=%2Fadmin%2Ftickets", resp.Header.Get("Location"))

	status, _ := s.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)

	resp, err = s.app.Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "http_requests_total")
}

func TestOverlongPasswordIsClientError(t *testing.T) {
	s := newTestServer(t)
	long := strings.Repeat("a", 80)

	status, env := s.do(t, nethttp.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "email": "ana@x.com", "password": long, "password_confirm": long,
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "password must be at most 72 characters", env.Error)

	adminToken := s.seedAdmin(t)
	status, _ = s.do(t, nethttp.MethodPost, "/api/users", adminToken, map[string]string{
		"name": "Dana", "email": "dana@x.com", "password": long,
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
}

func TestNonCanonicalIDs(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(t, nethttp.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "email": "ana@x.com", "password": "secret1", "password_confirm": "secret1",
	})
	require.Equal(t, nethttp.StatusCreated, status, env.Error)
	var ana struct {
		ID string `json:"id"`
	}
	decode(t, env.Data, &ana)
	anaToken := s.login(t, "ana@x.com", "secret1")

	status, env = s.do(t, nethttp.MethodGet, "/api/users/"+strings.ToUpper(ana.ID), anaToken, nil)
	require.Equal(t, nethttp.StatusOK, status, env.Error)

	_, env = s.do(t, nethttp.MethodPost, "/api/tickets", anaToken, map[string]string{"title": "Printer", "description": "jammed"})
	var ticket struct {
		ID string `json:"id"`
	}
	decode(t, env.Data, &ticket)

	for _, id := range []string{"urn:uuid:" + ticket.ID, "{" + ticket.ID + "}", strings.ReplaceAll(ticket.ID, "-", "")} {
		status, env = s.do(t, nethttp.MethodGet, "/api/tickets/"+id, anaToken, nil)
		assert.Equal(t, nethttp.StatusBadRequest, status, id)
		assert.Equal(t, "invalid ticket id", env.Error)
	}
}
