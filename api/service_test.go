package api_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/imvestor-client/api"
	"github.com/jrsteele09/imvestor-client/apiclient"
	"github.com/jrsteele09/imvestor-client/dto"
	"github.com/jrsteele09/imvestor-client/fakeapi"
	"github.com/jrsteele09/imvestor-client/internal/config"
	"github.com/jrsteele09/imvestor-client/internal/errors"
	"github.com/jrsteele09/imvestor-client/session"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "password123"
	testLoginURL = "/login"
)

type testAPIConfig struct {
	baseURL string
}

func (c testAPIConfig) GetBaseURL() string        { return c.baseURL }
func (c testAPIConfig) GetTimeout() time.Duration { return 5 * time.Second }
func (c testAPIConfig) GetLoginURL() string       { return testLoginURL }
func (c testAPIConfig) GetRefreshPath() string    { return fakeapi.RouteRefresh }

type testFixture struct {
	backend  *fakeapi.Server
	store    *session.InMemoryStore
	service  *api.Service
	redirect atomic.Value // last login URL passed to the expired hook
	expired  atomic.Int32
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		backend: fakeapi.New(config.New()),
		store:   &session.InMemoryStore{},
	}
	srv := httptest.NewServer(f.backend)
	t.Cleanup(srv.Close)

	client := apiclient.New(testAPIConfig{baseURL: srv.URL}, f.store,
		apiclient.WithHTTPClient(srv.Client()),
		apiclient.WithSessionExpiredHandler(func(loginURL string) {
			f.expired.Add(1)
			f.redirect.Store(loginURL)
		}),
	)
	f.service = api.New(client)
	return f
}

func (f *testFixture) signUpEntrepreneur(t *testing.T, email string) {
	t.Helper()
	err := f.service.RegisterEntrepreneur(context.Background(), dto.RegisterEntrepreneurRequest{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      email,
		Password:   testPassword,
		FiscalCode: "LVLDAA90A02",
		MobileFone: "+44 1234 567890",
		BirthDate:  dto.NewDate(1990, time.January, 2),
		Skills:     []int{1},
	})
	require.NoError(t, err)
}

func (f *testFixture) signIn(t *testing.T) session.Session {
	t.Helper()
	f.signUpEntrepreneur(t, testEmail)
	sess, err := f.service.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	return sess
}

func TestLogin_StartsSession(t *testing.T) {
	f := setupTestFixture(t)
	sess := f.signIn(t)

	require.Equal(t, session.RoleEntrepreneur, sess.Role)
	require.Equal(t, testEmail, sess.Email)
	require.NotEmpty(t, sess.RefreshToken)

	stored, ok := f.store.Get()
	require.True(t, ok)
	require.Equal(t, sess, stored)
	require.False(t, stored.Token().Expiry.IsZero())

	profile, err := f.service.CurrentProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", profile.DisplayName())
	require.IsType(t, &dto.EntrepreneurProfile{}, profile)
	require.Zero(t, f.backend.RefreshCalls())
}

func TestLogin_WrongPassword(t *testing.T) {
	f := setupTestFixture(t)
	f.signUpEntrepreneur(t, testEmail)

	_, err := f.service.Login(context.Background(), testEmail, "wrong")
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	require.ErrorIs(t, err, errors.ErrUnauthorized)
	require.Equal(t, 401, errors.StatusCode(err))

	_, ok := f.store.Get()
	require.False(t, ok)
	require.Zero(t, f.backend.RefreshCalls())
}

func TestRegister_Duplicate(t *testing.T) {
	f := setupTestFixture(t)
	f.signUpEntrepreneur(t, testEmail)

	err := f.service.RegisterInvestor(context.Background(), dto.RegisterInvestorRequest{
		FirstName: "Ada", LastName: "Again", Email: testEmail, Password: testPassword,
	})
	require.ErrorIs(t, err, errors.ErrConflict)
}

func TestExpiredAccessToken_RefreshesTransparently(t *testing.T) {
	f := setupTestFixture(t)
	before := f.signIn(t)

	f.backend.ExpireAccessTokens()

	profile, err := f.service.CurrentProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", profile.DisplayName())
	require.Equal(t, 1, f.backend.RefreshCalls())

	after, ok := f.store.Get()
	require.True(t, ok)
	require.NotEqual(t, before.AccessToken, after.AccessToken)
	require.Equal(t, before.RefreshToken, after.RefreshToken)
	require.Zero(t, f.expired.Load())

	t.Run("new token is reused without refreshing", func(t *testing.T) {
		_, err := f.service.CurrentProfile(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, f.backend.RefreshCalls())
	})
}

func TestRevokedRefreshToken_ExpiresSession(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	f.backend.ExpireAccessTokens()
	f.backend.RevokeRefreshTokens()

	_, err := f.service.CurrentProfile(context.Background())
	require.ErrorIs(t, err, errors.ErrSessionExpired)
	require.ErrorIs(t, err, errors.ErrRefreshFailed)
	require.Equal(t, 1, f.backend.RefreshCalls())

	_, ok := f.store.Get()
	require.False(t, ok)
	require.Equal(t, int32(1), f.expired.Load())
	require.Equal(t, testLoginURL, f.redirect.Load())

	t.Run("no session afterwards", func(t *testing.T) {
		_, err := f.service.CurrentProfile(context.Background())
		require.ErrorIs(t, err, errors.ErrNoSession)
	})
}

func TestGetProfile_WrongRoleIsForbidden(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	_, err := f.service.GetProfile(context.Background(), session.RoleInvestor)
	require.ErrorIs(t, err, errors.ErrForbidden)
	require.Zero(t, f.backend.RefreshCalls())

	_, err = f.service.GetProfile(context.Background(), session.Role("ADMIN"))
	require.ErrorIs(t, err, errors.ErrInvalidRole)
}

func TestUpdateProfile(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	updated, err := f.service.UpdateEntrepreneurProfile(context.Background(), dto.UpdateEntrepreneurProfileRequest{
		FirstName:   "Ada",
		LastName:    "King",
		City:        "London",
		CompanyName: "Engines Ltd",
	})
	require.NoError(t, err)
	require.Equal(t, "Ada King", updated.DisplayName())
	require.Equal(t, "London", *updated.City)
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	f.service.Logout()
	_, ok := f.service.Session()
	require.False(t, ok)

	_, err := f.service.GetProfile(context.Background(), session.RoleEntrepreneur)
	require.ErrorIs(t, err, errors.ErrUnauthorized)
	require.Zero(t, f.backend.RefreshCalls())
	require.Zero(t, f.expired.Load())
}

func TestCreateProjectWithFile(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	path := filepath.Join(t.TempDir(), "deck.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 pitch deck"), 0o600))
	file, err := api.EncodeFile(path)
	require.NoError(t, err)

	req := dto.ProjectRequest{
		Name:          "Analytical Engine",
		QuickSolution: "General purpose computing",
		About:         "Mechanical computer",
		CompanyFAQ:    []dto.FAQ{{Question: "When?", Answer: "1837"}},
	}

	t.Run("created with file", func(t *testing.T) {
		project, err := f.service.CreateProjectWithFile(context.Background(), req, file)
		require.NoError(t, err)
		files, err := f.backend.ProjectFiles(project.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"deck.pdf"}, files)
	})

	t.Run("failed upload keeps the project", func(t *testing.T) {
		f.backend.SetFailUploads(true)
		defer f.backend.SetFailUploads(false)

		project, err := f.service.CreateProjectWithFile(context.Background(), req, file)
		var partial *api.PartialError
		require.ErrorAs(t, err, &partial)
		require.ErrorIs(t, err, errors.ErrInternal)
		require.Equal(t, project.ID, partial.Project.ID)

		files, err := f.backend.ProjectFiles(project.ID)
		require.NoError(t, err)
		require.Empty(t, files)
	})
}

func TestEncodeFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("type from extension", func(t *testing.T) {
		path := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("abc"), 0o600))
		file, err := api.EncodeFile(path)
		require.NoError(t, err)
		require.Equal(t, "notes.txt", file.Name)
		require.Contains(t, file.Type, "text/plain")
		require.Equal(t, "3", file.Size)
		require.Equal(t, "YWJj", file.Base64)
	})

	t.Run("type sniffed from content", func(t *testing.T) {
		path := filepath.Join(dir, "banner")
		require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n0000"), 0o600))
		file, err := api.EncodeFile(path)
		require.NoError(t, err)
		require.Equal(t, "image/png", file.Type)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := api.EncodeFile(filepath.Join(dir, "nope"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestUploadBanner(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	err := f.service.UploadBanner(context.Background(), dto.FilePayload{
		Name: "banner.png", Type: "image/png", Size: "3", Base64: "YWJj",
	})
	require.NoError(t, err)

	profile, err := f.service.CurrentProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "banner.png", *profile.(*dto.EntrepreneurProfile).Banner)
}

func TestReferenceData(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	skills, err := f.service.ListSkills(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, skills)

	areas, err := f.service.ListAreas(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, areas)

	countries, err := f.service.ListCountries(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, countries)

	states, err := f.service.ListStates(ctx, countries[0].ID)
	require.NoError(t, err)
	require.NotEmpty(t, states)

	_, err = f.service.ListStates(ctx, 999)
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestGetReferrals(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)
	ctx := context.Background()

	details, err := f.service.GetReferrals(ctx, testEmail)
	require.NoError(t, err)
	require.Zero(t, details.Total)

	code := details.ReferralCode
	err = f.service.RegisterInvestor(ctx, dto.RegisterInvestorRequest{
		FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Password: testPassword, ReferralToken: &code,
	})
	require.NoError(t, err)

	details, err = f.service.GetReferrals(ctx, testEmail)
	require.NoError(t, err)
	require.Equal(t, 1, details.Total)
	require.Equal(t, "Grace Hopper", details.References[0].Name)
}

func TestLogin_ReplacesExistingSession(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	_, err := f.service.Login(context.Background(), testEmail, "wrong")
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	require.ErrorIs(t, err, errors.ErrUnauthorized)
	require.Zero(t, f.backend.RefreshCalls())

	_, ok := f.store.Get()
	require.False(t, ok)
}
