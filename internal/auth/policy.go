package auth

import (
	"net/url"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
)

// AccessPolicy decides which page paths a session may open.
type AccessPolicy struct {
	AdminPrefixes     []string
	DashboardPrefixes []string
	LoginPath         string
}

// Authorized is a pure decision: admin prefixes need the admin role,
// dashboard prefixes need any session, everything else is open.
func (p AccessPolicy) Authorized(path string, session *domain.Session) bool {
	if matchesAny(path, p.AdminPrefixes) {
		return session.IsAdmin()
	}
	if matchesAny(path, p.DashboardPrefixes) {
		return session.Authenticated()
	}
	return true
}

// Protected reports whether path falls under any gated prefix.
func (p AccessPolicy) Protected(path string) bool {
	return matchesAny(path, p.AdminPrefixes) || matchesAny(path, p.DashboardPrefixes)
}

// LoginRedirect returns the login URL that brings the user back to path.
func (p AccessPolicy) LoginRedirect(path string) string {
	login := p.LoginPath
	if login == "" {
		login = "/login"
	}
	return login + "?callbackUrl=" + url.QueryEscape(path)
}

// matchesAny matches whole path segments, so "/admin" covers "/admin" and
// "/admin/users" but not "/administrator".
func matchesAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		prefix = strings.TrimRight(prefix, "/")
		if prefix == "" {
			continue
		}
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
