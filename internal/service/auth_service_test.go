package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository/repotest"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

func newAuthFixture() (*AuthService, *repotest.Users, *stubNotifier, *memoryRevoker) {
	users := repotest.NewUsers()
	notifier := &stubNotifier{}
	revoker := &memoryRevoker{revoked: map[string]time.Time{}}
	svc := NewAuthService(testConfig(), AuthDependencies{UserRepo: users, Revoker: revoker, Notifier: notifier})
	return svc, users, notifier, revoker
}

func register(t *testing.T, svc *AuthService, name, email, password string) *domain.User {
	t.Helper()
	res, err := svc.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: password, PasswordConfirm: password})
	require.NoError(t, err)
	return res.User
}

func TestRegisterCreatesCustomerWithoutLeakingHash(t *testing.T) {
	svc, users, notifier, _ := newAuthFixture()
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{Name: " Ana ", Email: "  Ana@X.com ", Password: "secret1", PasswordConfirm: "secret1"})
	require.NoError(t, err)
	assert.True(t, res.WelcomeSent)
	assert.Equal(t, []string{"ana@x.com"}, notifier.greeted)
	assert.Equal(t, "Ana", res.User.Name)
	assert.Equal(t, "ana@x.com", res.User.Email)
	assert.Equal(t, domain.RoleCustomer, res.User.Role)
	assert.Empty(t, res.User.PasswordHash)

	stored, err := users.GetCredentialsByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)

	fetched, err := users.GetByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Empty(t, fetched.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	ctx := context.Background()

	cases := []RegisterInput{
		{Email: "a@x.com", Password: "secret1", PasswordConfirm: "secret1"},
		{Name: "A", Email: "a@x.com", Password: "abc", PasswordConfirm: "abc"},
		{Name: "A", Email: "a@x.com", Password: "secret1", PasswordConfirm: "secret2"},
	}
	for _, in := range cases {
		_, err := svc.Register(ctx, in)
		assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest), "%+v", in)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	register(t, svc, "Ana", "ana@x.com", "secret1")

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Other", Email: "ANA@x.com", Password: "secret1", PasswordConfirm: "secret1"})
	assert.True(t, apperrors.IsStatus(err, http.StatusConflict))
}

func TestRegisterSurvivesWelcomeFailure(t *testing.T) {
	svc, users, notifier, _ := newAuthFixture()
	notifier.err = errors.New("smtp down")

	res, err := svc.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret1", PasswordConfirm: "secret1"})
	require.NoError(t, err)
	assert.False(t, res.WelcomeSent)

	count, err := users.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestVerifyCredentialsFailuresLookAlike(t *testing.T) {
	svc, users, _, _ := newAuthFixture()
	ctx := context.Background()
	ana := register(t, svc, "Ana", "ana@x.com", "secret1")

	_, wrongPassword := svc.VerifyCredentials(ctx, "ana@x.com", "wrongpass")
	_, unknownEmail := svc.VerifyCredentials(ctx, "ghost@x.com", "secret1")
	require.Error(t, wrongPassword)
	assert.Equal(t, wrongPassword, unknownEmail)
	assert.Equal(t, "invalid credentials", wrongPassword.Error())

	ana.Active = false
	require.NoError(t, users.Update(ctx, ana))
	_, inactive := svc.VerifyCredentials(ctx, "ana@x.com", "secret1")
	assert.Equal(t, wrongPassword, inactive)
}

func TestVerifyCredentialsStoreFailureIsInternal(t *testing.T) {
	svc, users, _, _ := newAuthFixture()
	users.Err = errors.New("connection refused")

	_, err := svc.VerifyCredentials(context.Background(), "ana@x.com", "secret1")
	assert.True(t, apperrors.IsStatus(err, http.StatusInternalServerError))
}

func TestLoginIssuesRoleBearingToken(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	register(t, svc, "Ana", "ana@x.com", "secret1")

	user, token, err := svc.Login(context.Background(), " ANA@x.com", "secret1")
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)

	claims, err := svc.TokenManager().Parse(token.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, _, revoker := newAuthFixture()
	register(t, svc, "Ana", "ana@x.com", "secret1")
	_, token, err := svc.Login(context.Background(), "ana@x.com", "secret1")
	require.NoError(t, err)

	claims, err := svc.TokenManager().Parse(token.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background(), claims))

	revoked, err := revoker.IsRevoked(context.Background(), token.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.NoError(t, svc.Logout(context.Background(), nil))
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	ctx := context.Background()
	in := SeedAdminInput{Email: "Admin@Example.com", Password: "admin123"}

	admin, created, err := svc.SeedAdmin(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, "Administrator", admin.Name)
	assert.Equal(t, "admin@example.com", admin.Email)

	again, created, err := svc.SeedAdmin(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)

	_, token, err := svc.Login(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
}

func TestOverlongPasswordIsRejected(t *testing.T) {
	svc, users, _, _ := newAuthFixture()
	ctx := context.Background()
	long := strings.Repeat("a", 80)

	_, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@x.com", Password: long, PasswordConfirm: long})
	assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))

	_, _, err = svc.SeedAdmin(ctx, SeedAdminInput{Email: "admin@x.com", Password: long})
	assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
