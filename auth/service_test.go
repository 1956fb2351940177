package auth_test

import (
	"context"
	"sync"
	"testing"

	"github.com/meridianhq/go-identity-server/auth"
	"github.com/meridianhq/go-identity-server/directory"
	directoryfake "github.com/meridianhq/go-identity-server/directory/repofake"
	"github.com/meridianhq/go-identity-server/internal/apperr"
	sessionfake "github.com/meridianhq/go-identity-server/sessions/repofake"
	"github.com/meridianhq/go-identity-server/token"
	"github.com/meridianhq/go-identity-server/token/refresh"
	refreshfake "github.com/meridianhq/go-identity-server/token/refresh/repofake"
	"github.com/meridianhq/go-identity-server/users"
	userfake "github.com/meridianhq/go-identity-server/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	secretStr        = "test-signing-secret"
	testUserEmail    = "john.doe@example.com"
	testUserPassword = "password123"
	testTenantID     = "tenant-1"
)

// testFixture holds all test dependencies
type testFixture struct {
	userRepo      *userfake.FakeUserRepo
	directoryRepo *directoryfake.FakeDirectoryRepo
	sessionRepo   *sessionfake.FakeSessionRepo
	refreshRepo   *refreshfake.FakeRefreshTokenRepo
	tokenManager  *token.Manager
	service       *auth.Service
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	ur := userfake.NewFakeUserRepo()
	dr := directoryfake.NewFakeDirectoryRepo()
	sr := sessionfake.NewFakeSessionRepo()
	rr := refreshfake.NewFakeRefreshTokenRepo()

	tm := token.New(token.NewHMACSigner(secretStr))
	rm := refresh.NewManager(rr)

	service, err := auth.NewService(
		auth.Repos{Users: ur, Directory: dr, Sessions: sr},
		users.NewHasher(4),
		tm,
		rm,
	)
	require.NoError(t, err)

	return &testFixture{
		userRepo:      ur,
		directoryRepo: dr,
		sessionRepo:   sr,
		refreshRepo:   rr,
		tokenManager:  tm,
		service:       service,
	}
}

func (f *testFixture) register(t *testing.T, email, password, tenantID string) *auth.Result {
	t.Helper()
	result, err := f.service.Register(context.Background(), auth.RegisterParams{
		Email:    email,
		Password: password,
		TenantID: tenantID,
	})
	require.NoError(t, err)
	return result
}

func TestRegisterIssuesTokensAndRecordsSession(t *testing.T) {
	f := setupTestFixture(t)

	result := f.register(t, testUserEmail, testUserPassword, testTenantID)

	require.NotEmpty(t, result.User.ID)
	require.Equal(t, testUserEmail, result.User.Email)
	require.Equal(t, testTenantID, result.User.TenantID)
	require.Equal(t, users.RoleUser, result.User.Role)
	require.False(t, result.User.EmailVerified)
	require.NotEmpty(t, result.AccessToken)
	require.Len(t, result.RefreshToken, 80)

	claims, err := f.tokenManager.Verify(result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, result.User.ID, claims.UserID)
	require.Equal(t, testTenantID, claims.TenantID)
	require.Empty(t, claims.Organizations)

	records := f.sessionRepo.Records()
	require.Len(t, records, 1)
	require.Equal(t, result.User.ID, records[0].UserID)
	require.Equal(t, result.AccessToken, records[0].Token)
}

func TestRegisterValidation(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, auth.RegisterParams{Email: "", Password: testUserPassword})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = f.service.Register(ctx, auth.RegisterParams{Email: testUserEmail, Password: ""})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = f.service.Register(ctx, auth.RegisterParams{Email: testUserEmail, Password: "short"})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
	require.Equal(t, "password must be at least 8 characters long", apperr.Message(err))

	require.Equal(t, 0, f.userRepo.Count())
}

func TestRegisterDuplicateFails(t *testing.T) {
	f := setupTestFixture(t)

	f.register(t, testUserEmail, testUserPassword, testTenantID)

	_, err := f.service.Register(context.Background(), auth.RegisterParams{
		Email:    testUserEmail,
		Password: testUserPassword,
		TenantID: testTenantID,
	})
	require.True(t, apperr.IsKind(err, apperr.KindConflict))
	require.Equal(t, "user already exists", apperr.Message(err))
}

func TestRegisterSameEmailDifferentTenants(t *testing.T) {
	f := setupTestFixture(t)

	first := f.register(t, "a@x.com", testUserPassword, "t1")
	second := f.register(t, "a@x.com", testUserPassword, "t2")

	require.NotEqual(t, first.User.ID, second.User.ID)
	require.Equal(t, 2, f.userRepo.Count())
}

func TestConcurrentRegisterHasExactlyOneWinner(t *testing.T) {
	f := setupTestFixture(t)

	const callers = 8
	var (
		wg        sync.WaitGroup
		successes int
		conflicts int
		mu        sync.Mutex
	)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := f.service.Register(context.Background(), auth.RegisterParams{
				Email:    testUserEmail,
				Password: testUserPassword,
				TenantID: testTenantID,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if apperr.IsKind(err, apperr.KindConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, callers-1, conflicts)
	require.Equal(t, 1, f.userRepo.Count())
}

func TestLoginSucceedsWithCorrectPassword(t *testing.T) {
	f := setupTestFixture(t)

	registered := f.register(t, testUserEmail, testUserPassword, testTenantID)

	result, err := f.service.Login(context.Background(), testUserEmail, testUserPassword, testTenantID)
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, result.User.ID)
	require.NotEqual(t, registered.RefreshToken, result.RefreshToken)

	claims, err := f.tokenManager.Verify(result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, claims.UserID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := setupTestFixture(t)

	f.register(t, testUserEmail, testUserPassword, testTenantID)

	_, wrongPassword := f.service.Login(context.Background(), testUserEmail, "wrong-password", testTenantID)
	_, unknownUser := f.service.Login(context.Background(), "nobody@example.com", testUserPassword, testTenantID)
	_, wrongTenant := f.service.Login(context.Background(), testUserEmail, testUserPassword, "other-tenant")

	for _, err := range []error{wrongPassword, unknownUser, wrongTenant} {
		require.True(t, apperr.IsKind(err, apperr.KindAuthentication))
		require.Equal(t, "invalid credentials", apperr.Message(err))
	}

	// No tokens issued on any failed login: only the register pair exists.
	require.Equal(t, 1, f.refreshRepo.Count())
}

func TestLoginEmbedsCurrentMemberships(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	registered := f.register(t, testUserEmail, testUserPassword, testTenantID)

	require.NoError(t, f.directoryRepo.CreateOrganization(ctx, &directory.Organization{
		ID: "org-1", TenantID: testTenantID, Name: "Engineering",
	}))
	require.NoError(t, f.directoryRepo.AddMembership(ctx, "org-1", registered.User.ID, "ADMIN"))

	result, err := f.service.Login(ctx, testUserEmail, testUserPassword, testTenantID)
	require.NoError(t, err)

	claims, err := f.tokenManager.Verify(result.AccessToken)
	require.NoError(t, err)
	require.Len(t, claims.Organizations, 1)
	require.Equal(t, "org-1", claims.Organizations[0].ID)
	require.Equal(t, "Engineering", claims.Organizations[0].Name)
	require.Equal(t, "ADMIN", claims.Organizations[0].Role)
}

func TestRefreshRotatesAndIsSingleUse(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	registered := f.register(t, testUserEmail, testUserPassword, testTenantID)

	pair, err := f.service.Refresh(ctx, registered.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, registered.RefreshToken, pair.RefreshToken)

	claims, err := f.tokenManager.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, claims.UserID)

	_, err = f.service.Refresh(ctx, registered.RefreshToken)
	require.True(t, apperr.IsKind(err, apperr.KindAuthentication))
	require.Equal(t, "invalid or expired refresh token", apperr.Message(err))
}

func TestRefreshRederivesMembershipsFreshly(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	registered := f.register(t, testUserEmail, testUserPassword, testTenantID)

	// Membership granted after the original issuance must appear in the
	// rotated token's claims.
	require.NoError(t, f.directoryRepo.CreateOrganization(ctx, &directory.Organization{
		ID: "org-1", TenantID: testTenantID, Name: "Engineering",
	}))
	require.NoError(t, f.directoryRepo.AddMembership(ctx, "org-1", registered.User.ID, "USER"))

	pair, err := f.service.Refresh(ctx, registered.RefreshToken)
	require.NoError(t, err)

	claims, err := f.tokenManager.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Len(t, claims.Organizations, 1)
}

func TestConcurrentRefreshHasExactlyOneWinner(t *testing.T) {
	f := setupTestFixture(t)

	registered := f.register(t, testUserEmail, testUserPassword, testTenantID)

	const callers = 8
	var (
		wg        sync.WaitGroup
		successes int
		failures  int
		mu        sync.Mutex
	)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := f.service.Refresh(context.Background(), registered.RefreshToken)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else {
				failures++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, callers-1, failures)
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	registered := f.register(t, testUserEmail, testUserPassword, testTenantID)

	require.NoError(t, f.service.Logout(ctx, registered.RefreshToken))
	require.NoError(t, f.service.Logout(ctx, registered.RefreshToken))

	_, err := f.service.Refresh(ctx, registered.RefreshToken)
	require.True(t, apperr.IsKind(err, apperr.KindAuthentication))
}

func TestLogoutDoesNotInvalidateAccessTokens(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	registered := f.register(t, testUserEmail, testUserPassword, testTenantID)
	require.NoError(t, f.service.Logout(ctx, registered.RefreshToken))

	// Access tokens are stateless and expire on their own schedule.
	_, err := f.tokenManager.Verify(registered.AccessToken)
	require.NoError(t, err)
}

// TestRegisterLoginRefreshScenario walks the full lifecycle: registration's
// refresh token stays live through an intervening login and can be rotated
// exactly once.
func TestRegisterLoginRefreshScenario(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	registered := f.register(t, "bob@acme.com", "password123", "acme")
	require.NotEmpty(t, registered.User.ID)
	require.NotEmpty(t, registered.AccessToken)
	require.NotEmpty(t, registered.RefreshToken)

	loggedIn, err := f.service.Login(ctx, "bob@acme.com", "password123", "acme")
	require.NoError(t, err)
	require.NotEqual(t, registered.RefreshToken, loggedIn.RefreshToken)

	pair, err := f.service.Refresh(ctx, registered.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, registered.RefreshToken, pair.RefreshToken)
	require.NotEqual(t, loggedIn.RefreshToken, pair.RefreshToken)

	_, err = f.service.Refresh(ctx, registered.RefreshToken)
	require.True(t, apperr.IsKind(err, apperr.KindAuthentication))
}
