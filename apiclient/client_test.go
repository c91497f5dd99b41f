package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/imvestor-client/apiclient"
	"github.com/jrsteele09/imvestor-client/internal/errors"
	"github.com/jrsteele09/imvestor-client/session"
	"github.com/stretchr/testify/require"
)

const (
	validAccess   = "access-valid"
	expiredAccess = "access-expired"
	validRefresh  = "refresh-valid"
	loginURL      = "/login"
)

type testAPIConfig struct {
	baseURL string
}

func (c testAPIConfig) GetBaseURL() string        { return c.baseURL }
func (c testAPIConfig) GetTimeout() time.Duration { return 5 * time.Second }
func (c testAPIConfig) GetLoginURL() string       { return loginURL }
func (c testAPIConfig) GetRefreshPath() string    { return "/auth/refresh" }

// backend is a scripted remote API. It accepts whichever access token is
// currently valid and mints a new one on refresh.
type backend struct {
	mu              sync.Mutex
	validAccess     string
	validRefresh    string
	refreshCalls    atomic.Int32
	profileCalls    atomic.Int32
	alwaysReject    bool
	refreshDelay    time.Duration
	expiredBarrier  *sync.WaitGroup // holds expired-token requests until all have arrived
	lastAuthHeader  string
	lastRequestID   string
	lastTraceparent string
	bodies          []string
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		if b.refreshDelay > 0 {
			time.Sleep(b.refreshDelay)
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+b.validRefresh {
			http.Error(w, `{"message":"invalid refresh token"}`, http.StatusUnauthorized)
			return
		}
		b.validAccess = "access-refreshed"
		_ = json.NewEncoder(w).Encode(map[string]string{"token": b.validAccess})
	})
	protected := func(w http.ResponseWriter, r *http.Request) {
		b.profileCalls.Add(1)
		body, _ := io.ReadAll(r.Body)
		if b.expiredBarrier != nil && r.Header.Get("Authorization") == "Bearer "+expiredAccess {
			b.expiredBarrier.Done()
			b.expiredBarrier.Wait()
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		b.lastAuthHeader = r.Header.Get("Authorization")
		b.lastRequestID = r.Header.Get("X-Request-ID")
		b.lastTraceparent = r.Header.Get("traceparent")
		b.bodies = append(b.bodies, string(body))
		if b.alwaysReject || b.lastAuthHeader != "Bearer "+b.validAccess {
			http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Ada"}`))
	}
	mux.HandleFunc("GET /entrepreneur", protected)
	mux.HandleFunc("PATCH /entrepreneur", protected)
	mux.HandleFunc("GET /skill/skills-list", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.lastAuthHeader = r.Header.Get("Authorization")
		b.mu.Unlock()
		_, _ = w.Write([]byte(`[{"id":1,"description":"Go"}]`))
	})
	mux.HandleFunc("GET /boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "kaboom", http.StatusInternalServerError)
	})
	return mux
}

type testFixture struct {
	backend  *backend
	server   *httptest.Server
	store    *session.InMemoryStore
	client   *apiclient.Client
	expired  []string
	states   [][2]apiclient.State
	statesMu sync.Mutex
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		backend: &backend{validAccess: validAccess, validRefresh: validRefresh},
		store:   session.NewInMemoryStore(),
	}
	f.server = httptest.NewServer(f.backend.handler())
	t.Cleanup(f.server.Close)

	f.client = apiclient.New(testAPIConfig{baseURL: f.server.URL}, f.store,
		apiclient.WithHTTPClient(f.server.Client()),
		apiclient.WithSessionExpiredHandler(func(u string) { f.expired = append(f.expired, u) }),
		apiclient.WithStateObserver(func(from, to apiclient.State) {
			f.statesMu.Lock()
			defer f.statesMu.Unlock()
			f.states = append(f.states, [2]apiclient.State{from, to})
		}),
	)
	return f
}

func (f *testFixture) login(t *testing.T, access string) {
	t.Helper()
	require.NoError(t, f.store.Begin(session.Session{
		AccessToken:  access,
		RefreshToken: validRefresh,
		Role:         session.RoleEntrepreneur,
		Email:        "ada@example.com",
	}))
}

func (f *testFixture) visited() []apiclient.State {
	f.statesMu.Lock()
	defer f.statesMu.Unlock()
	out := make([]apiclient.State, 0, len(f.states))
	for _, tr := range f.states {
		out = append(out, tr[1])
	}
	return out
}

func get(path string) *apiclient.Request {
	return &apiclient.Request{Method: http.MethodGet, Path: path}
}

func TestSend_AttachesBearerToken(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, validAccess)

	resp, err := f.client.Send(context.Background(), get("/entrepreneur"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"name":"Ada"}`, string(resp.Body))
	require.Equal(t, "Bearer "+validAccess, f.backend.lastAuthHeader)
	require.NotEmpty(t, f.backend.lastRequestID)
	require.Equal(t, int32(0), f.backend.refreshCalls.Load())
	require.Equal(t, []apiclient.State{
		apiclient.StateAuthenticated,
		apiclient.StateDispatched,
		apiclient.StateSucceeded,
	}, f.visited())
}

func TestSend_NoSessionSendsNoAuthorization(t *testing.T) {
	f := setupTestFixture(t)

	var skills []struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	}
	require.NoError(t, f.client.Do(context.Background(), http.MethodGet, "/skill/skills-list", nil, &skills))
	require.Len(t, skills, 1)
	require.Empty(t, f.backend.lastAuthHeader)
	require.Equal(t, []apiclient.State{apiclient.StateDispatched, apiclient.StateSucceeded}, f.visited())
}

func TestSend_RefreshesOnceAndRetries(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, expiredAccess)

	resp, err := f.client.Send(context.Background(), get("/entrepreneur"))
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Ada"}`, string(resp.Body))

	require.Equal(t, int32(1), f.backend.refreshCalls.Load())
	require.Equal(t, int32(2), f.backend.profileCalls.Load())
	require.Equal(t, "Bearer access-refreshed", f.backend.lastAuthHeader)

	s, ok := f.store.Get()
	require.True(t, ok)
	require.Equal(t, "access-refreshed", s.AccessToken)
	require.Equal(t, validRefresh, s.RefreshToken)
	require.Empty(t, f.expired)

	require.Equal(t, []apiclient.State{
		apiclient.StateAuthenticated,
		apiclient.StateDispatched,
		apiclient.StateRefreshing,
		apiclient.StateRetrying,
		apiclient.StateSucceeded,
	}, f.visited())
}

func TestSend_RetryReplaysBody(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, expiredAccess)

	_, err := f.client.Send(context.Background(), &apiclient.Request{
		Method: http.MethodPatch,
		Path:   "/entrepreneur",
		Body:   []byte(`{"about":"hello"}`),
	})
	require.NoError(t, err)
	require.Equal(t, []string{`{"about":"hello"}`, `{"about":"hello"}`}, f.backend.bodies)
}

func TestSend_SecondUnauthorizedIsNotRetried(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.alwaysReject = true
	f.login(t, expiredAccess)

	_, err := f.client.Send(context.Background(), get("/entrepreneur"))
	require.Error(t, err)
	require.ErrorIs(t, err, errors.ErrUnauthorized)
	require.NotErrorIs(t, err, errors.ErrSessionExpired)

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	require.Equal(t, int32(1), f.backend.refreshCalls.Load())
	require.Equal(t, int32(2), f.backend.profileCalls.Load())

	// The refreshed token is kept; only a failed refresh clears the session
	s, ok := f.store.Get()
	require.True(t, ok)
	require.Equal(t, "access-refreshed", s.AccessToken)
	require.Equal(t, apiclient.StateFailed, f.visited()[len(f.visited())-1])
}

func TestSend_FailedRefreshClearsSession(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.validRefresh = "something-else"
	f.login(t, expiredAccess)

	_, err := f.client.Send(context.Background(), get("/entrepreneur"))
	require.ErrorIs(t, err, errors.ErrSessionExpired)
	require.ErrorIs(t, err, errors.ErrRefreshFailed)

	_, ok := f.store.Get()
	require.False(t, ok)
	require.Equal(t, []string{loginURL}, f.expired)
	require.Equal(t, int32(1), f.backend.refreshCalls.Load())
	require.Equal(t, int32(1), f.backend.profileCalls.Load())
	require.Equal(t, apiclient.StateSessionExpired, f.visited()[len(f.visited())-1])

	t.Run("later calls go out unauthenticated", func(t *testing.T) {
		_, err := f.client.Send(context.Background(), get("/entrepreneur"))
		require.ErrorIs(t, err, errors.ErrUnauthorized)
		require.Empty(t, f.backend.lastAuthHeader)
		require.Equal(t, int32(1), f.backend.refreshCalls.Load())
	})
}

func TestSend_MissingRefreshTokenExpiresWithoutCall(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Begin(session.Session{AccessToken: expiredAccess}))

	_, err := f.client.Send(context.Background(), get("/entrepreneur"))
	require.ErrorIs(t, err, errors.ErrSessionExpired)
	require.Equal(t, int32(0), f.backend.refreshCalls.Load())
	_, ok := f.store.Get()
	require.False(t, ok)
}

func TestSend_UnauthorizedWithoutSessionIsPropagated(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.client.Send(context.Background(), get("/entrepreneur"))
	require.ErrorIs(t, err, errors.ErrUnauthorized)
	require.NotErrorIs(t, err, errors.ErrSessionExpired)
	require.Equal(t, int32(0), f.backend.refreshCalls.Load())
	require.Empty(t, f.expired)
}

func TestSend_OtherFailuresPropagateUnchanged(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, validAccess)

	t.Run("server error", func(t *testing.T) {
		_, err := f.client.Send(context.Background(), get("/boom"))
		var apiErr *errors.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		require.Contains(t, string(apiErr.Body), "kaboom")
		require.ErrorIs(t, err, errors.ErrInternal)
		require.Equal(t, int32(0), f.backend.refreshCalls.Load())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.client.Send(context.Background(), get("/nope"))
		require.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("transport", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()
		c := apiclient.New(testAPIConfig{baseURL: dead.URL}, f.store)
		_, err := c.Send(context.Background(), get("/entrepreneur"))
		require.ErrorIs(t, err, errors.ErrTransport)
		_, ok := f.store.Get()
		require.True(t, ok)
	})

	t.Run("invalid request", func(t *testing.T) {
		_, err := f.client.Send(context.Background(), &apiclient.Request{Path: "/entrepreneur"})
		require.ErrorIs(t, err, errors.ErrInvalidRequest)
	})
}

func TestSend_ConcurrentRequestsRefreshIndependently(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.refreshDelay = 20 * time.Millisecond
	f.backend.expiredBarrier = &sync.WaitGroup{}
	f.backend.expiredBarrier.Add(2)
	f.login(t, expiredAccess)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.client.Send(context.Background(), get("/entrepreneur"))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(2), f.backend.refreshCalls.Load())
}

func TestDo_DecodesAndEncodesJSON(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, validAccess)

	var out struct {
		Name string `json:"name"`
	}
	err := f.client.Do(context.Background(), http.MethodPatch, "/entrepreneur", map[string]string{"about": "x"}, &out)
	require.NoError(t, err)
	require.Equal(t, "Ada", out.Name)
	require.Equal(t, []string{`{"about":"x"}`}, f.backend.bodies)
}
