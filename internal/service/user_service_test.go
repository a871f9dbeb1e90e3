package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository/repotest"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

func TestUserCreateHashesAndDefaultsRole(t *testing.T) {
	users := repotest.NewUsers()
	svc := NewUserService(testConfig(), users)
	ctx := context.Background()

	user, err := svc.Create(ctx, UserCreateInput{
		Name: "Dana", Email: "Dana@X.com", Password: "secret1", Phone: "555",
		Address: &domain.Address{City: "Lima", Country: "PE"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.Equal(t, "dana@x.com", user.Email)
	assert.Equal(t, "Lima", user.Address.City)
	assert.Empty(t, user.PasswordHash)

	creds, err := users.GetCredentialsByEmail(ctx, "dana@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", creds.PasswordHash)

	_, err = svc.Create(ctx, UserCreateInput{Name: "Dup", Email: "dana@x.com", Password: "secret1"})
	assert.True(t, apperrors.IsStatus(err, http.StatusConflict))
	_, err = svc.Create(ctx, UserCreateInput{Name: "X", Email: "x@x.com", Password: "secret1", Role: "owner"})
	assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))
	_, err = svc.Create(ctx, UserCreateInput{Name: "X", Email: "x@x.com", Password: "123"})
	assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	for _, u := range list {
		assert.Empty(t, u.PasswordHash)
	}
}

func TestUserGetIsAdminOrSelf(t *testing.T) {
	users := repotest.NewUsers()
	svc := NewUserService(testConfig(), users)
	ctx := context.Background()
	ana := seedUser(t, users, "Ana", "ana@x.com", domain.RoleCustomer)
	bob := seedUser(t, users, "Bob", "bob@x.com", domain.RoleCustomer)
	admin := seedUser(t, users, "Root", "root@x.com", domain.RoleAdmin)

	_, err := svc.Get(ctx, sessionFor(ana), ana.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, sessionFor(admin), bob.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, sessionFor(ana), bob.ID)
	assert.True(t, apperrors.IsStatus(err, http.StatusForbidden))
	_, err = svc.Get(ctx, sessionFor(admin), uuid.NewString())
	assert.True(t, apperrors.IsStatus(err, http.StatusNotFound))
	_, err = svc.Get(ctx, sessionFor(admin), "abc")
	assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))
}

func TestUserSelfUpdateIgnoresPrivilegedFields(t *testing.T) {
	users := repotest.NewUsers()
	svc := NewUserService(testConfig(), users)
	ctx := context.Background()
	ana := seedUser(t, users, "Ana", "ana@x.com", domain.RoleCustomer)

	role := domain.RoleAdmin
	inactive := false
	email := "new@x.com"
	name := "Ana María"
	updated, err := svc.Update(ctx, sessionFor(ana), ana.ID, UserUpdateInput{
		Name: &name, Role: &role, Active: &inactive, Email: &email,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.Name)
	assert.Equal(t, domain.RoleCustomer, updated.Role)
	assert.True(t, updated.Active)
	assert.Equal(t, "ana@x.com", updated.Email)
}

func TestAdminUpdateChangesRoleAndStatus(t *testing.T) {
	users := repotest.NewUsers()
	svc := NewUserService(testConfig(), users)
	ctx := context.Background()
	ana := seedUser(t, users, "Ana", "ana@x.com", domain.RoleCustomer)
	bob := seedUser(t, users, "Bob", "bob@x.com", domain.RoleCustomer)
	admin := seedUser(t, users, "Root", "root@x.com", domain.RoleAdmin)

	role := domain.RoleAdmin
	inactive := false
	updated, err := svc.Update(ctx, sessionFor(admin), ana.ID, UserUpdateInput{Role: &role, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	assert.False(t, updated.Active)

	taken := "BOB@x.com"
	_, err = svc.Update(ctx, sessionFor(admin), ana.ID, UserUpdateInput{Email: &taken})
	assert.True(t, apperrors.IsStatus(err, http.StatusConflict))

	bad := domain.Role("root")
	_, err = svc.Update(ctx, sessionFor(admin), bob.ID, UserUpdateInput{Role: &bad})
	assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))
}

func TestUserDeleteRepeatsNotFound(t *testing.T) {
	users := repotest.NewUsers()
	svc := NewUserService(testConfig(), users)
	ctx := context.Background()
	ana := seedUser(t, users, "Ana", "ana@x.com", domain.RoleCustomer)

	require.NoError(t, svc.Delete(ctx, ana.ID))
	assert.True(t, apperrors.IsStatus(svc.Delete(ctx, ana.ID), http.StatusNotFound))
	assert.True(t, apperrors.IsStatus(svc.Delete(ctx, ana.ID), http.StatusNotFound))
}

func TestDashboardStats(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()
	ticket := f.create(t, f.ana, "t")
	f.create(t, f.bob, "u")
	_, err := f.svc.Create(ctx, sessionFor(f.ana), ticket.ID, "hello")
	require.NoError(t, err)

	closed := domain.TicketStatusClosed
	_, err = f.ticketFixture.svc.Update(ctx, sessionFor(f.admin), ticket.ID, TicketUpdateInput{Status: &closed})
	require.NoError(t, err)

	stats := NewStatsService(f.tickets, f.users, f.comments)
	dash, err := stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, dash.TotalTickets)
	assert.EqualValues(t, 3, dash.TotalUsers)
	assert.EqualValues(t, 1, dash.TotalComments)
	assert.EqualValues(t, 1, dash.TicketsByStatus[domain.TicketStatusClosed])
	assert.EqualValues(t, 1, dash.TicketsByStatus[domain.TicketStatusOpen])
	assert.Contains(t, dash.TicketsByStatus, domain.TicketStatusResolved)

	backlog, err := stats.TicketBacklog(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, backlog["open"])
	assert.EqualValues(t, 0, backlog["in_progress"])
}

func TestUserCreateRejectsOverlongPassword(t *testing.T) {
	svc := NewUserService(testConfig(), repotest.NewUsers())

	_, err := svc.Create(context.Background(), UserCreateInput{Name: "Dana", Email: "dana@x.com", Password: strings.Repeat("a", 73)})
	assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))
}

func TestUserGetNormalizesIDCase(t *testing.T) {
	users := repotest.NewUsers()
	svc := NewUserService(testConfig(), users)
	ctx := context.Background()
	ana := seedUser(t, users, "Ana", "ana@x.com", domain.RoleCustomer)

	got, err := svc.Get(ctx, sessionFor(ana), strings.ToUpper(ana.ID))
	require.NoError(t, err)
	assert.Equal(t, ana.ID, got.ID)

	_, err = svc.Get(ctx, sessionFor(ana), "urn:uuid:"+ana.ID)
	assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))
}
