package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestAccessPolicyAuthorized(t *testing.T) {
	policy := AccessPolicy{
		AdminPrefixes:     []string{"/admin"},
		DashboardPrefixes: []string{"/dashboard/"},
		LoginPath:         "/login",
	}
	customer := &domain.Session{UserID: "u1", Role: domain.RoleCustomer}
	admin := &domain.Session{UserID: "u2", Role: domain.RoleAdmin}

	cases := []struct {
		path    string
		session *domain.Session
		want    bool
	}{
		{"/", nil, true},
		{"/tickets", nil, true},
		{"/administrator", nil, true},
		{"/admin", nil, false},
		{"/admin/users", customer, false},
		{"/admin/users", admin, true},
		{"/dashboard", nil, false},
		{"/dashboard/comments", customer, true},
		{"/dashboard", admin, true},
		{"/dashboards", nil, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, policy.Authorized(tc.path, tc.session), tc.path)
	}
}

func TestAccessPolicyProtectedAndRedirect(t *testing.T) {
	policy := AccessPolicy{AdminPrefixes: []string{"/admin"}, DashboardPrefixes: []string{"/dashboard"}}

	assert.True(t, policy.Protected("/admin/tickets"))
	assert.True(t, policy.Protected("/dashboard"))
	assert.False(t, policy.Protected("/api/tickets"))
	assert.Equal(t, "/login?callbackUrl=%2Fadmin%2Ftickets", policy.LoginRedirect("/admin/tickets"))
}
