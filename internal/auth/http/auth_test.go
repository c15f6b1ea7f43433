package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	authhttp "github.com/paperbark/journal/internal/auth/http"
	"github.com/paperbark/journal/internal/auth/service"
	"github.com/paperbark/journal/internal/auth/store/drivers/memory"
	"github.com/paperbark/journal/pkg/cryptox"
	"github.com/paperbark/journal/pkg/httpx"
	"github.com/paperbark/journal/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	cryptox.SetPepperPath(filepath.Join(os.TempDir(), "journal-http-test-pepper"))
	os.Exit(m.Run())
}

type testServer struct {
	router *authhttp.Router
	store  *memory.Store
	svc    *service.SessionService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st := memory.NewStore()
	svc := &service.SessionService{
		Store: st,
		AccessCtx: jwtx.SigningContext{
			Secret:   []byte("access-secret"),
			TTL:      time.Hour,
			Issuer:   "journal-auth",
			Audience: "journal-app",
		},
		RefreshCtx: jwtx.SigningContext{
			Secret:   []byte("refresh-secret"),
			TTL:      30 * 24 * time.Hour,
			Issuer:   "journal-auth",
			Audience: "journal-app",
		},
	}

	router := authhttp.NewRouter(authhttp.RouterConfig{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:     st,
		Sessions:  svc,
		AccessCtx: svc.AccessCtx,
		RateLimit: httpx.RateLimitConfig{MaxRequests: 1000, Window: time.Minute},
		Cookies: authhttp.CookieConfig{
			Secure:     false,
			AccessTTL:  time.Hour,
			RefreshTTL: 30 * 24 * time.Hour,
		},
	})

	return &testServer{router: router, store: st, svc: svc}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func registerBob(t *testing.T, ts *testServer) map[string]any {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/auth/register", map[string]string{
		"username":   "bob",
		"password":   "hunter2hunter2",
		"first_name": "Bob",
		"last_name":  "Jones",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeBody(t, rec)
}

func TestRegisterEndpoint(t *testing.T) {
	ts := newTestServer(t)

	t.Run("creates account and returns tokens", func(t *testing.T) {
		body := registerBob(t, ts)
		require.NotEmpty(t, body["access_token"])
		require.NotEmpty(t, body["refresh_token"])
		require.Equal(t, "Bearer", body["token_type"])
		require.EqualValues(t, 3600, body["expires_in"])
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/auth/register", map[string]string{
			"username": "bob",
			"password": "different",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Equal(t, "duplicate_username", decodeBody(t, rec)["error"])
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/auth/register", map[string]string{"username": "nopassword"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "invalid_request", decodeBody(t, rec)["error"])
	})
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t)
	registerBob(t, ts)

	t.Run("valid credentials", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/auth/login", map[string]string{
			"username": "bob",
			"password": "hunter2hunter2",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		require.NotEmpty(t, body["access_token"])
		require.NotEmpty(t, body["refresh_token"])

		cookies := rec.Result().Cookies()
		var names []string
		for _, c := range cookies {
			names = append(names, c.Name)
			require.True(t, c.HttpOnly)
			require.Equal(t, http.SameSiteStrictMode, c.SameSite)
			require.Positive(t, c.MaxAge)
		}
		require.ElementsMatch(t, []string{"access_token", "refresh_token"}, names)
	})

	t.Run("wrong password and unknown user look identical", func(t *testing.T) {
		wrong := ts.do(t, http.MethodPost, "/auth/login", map[string]string{
			"username": "bob", "password": "wrong",
		})
		unknown := ts.do(t, http.MethodPost, "/auth/login", map[string]string{
			"username": "ghost", "password": "wrong",
		})

		require.Equal(t, http.StatusUnauthorized, wrong.Code)
		require.Equal(t, http.StatusUnauthorized, unknown.Code)
		require.Equal(t, wrong.Body.String(), unknown.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRefreshEndpoint(t *testing.T) {
	ts := newTestServer(t)
	tokens := registerBob(t, ts)
	refreshToken := tokens["refresh_token"].(string)

	t.Run("token in body", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/auth/refresh", map[string]string{
			"refresh_token": refreshToken,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotEmpty(t, decodeBody(t, rec)["access_token"])
	})

	t.Run("token in cookie", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/auth/refresh", nil, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: authhttp.RefreshTokenCookie, Value: refreshToken})
		})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("access token rejected", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/auth/refresh", map[string]string{
			"refresh_token": tokens["access_token"].(string),
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "invalid_token", decodeBody(t, rec)["error"])
	})

	t.Run("no token at all", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/auth/refresh", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		require.Equal(t, -1, c.MaxAge, "cookie %s must be expired", c.Name)
		require.Empty(t, c.Value)
	}
}

func TestRateLimitOnRouter(t *testing.T) {
	ts := newTestServerWithLimit(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		rec := ts.do(t, http.MethodGet, "/livez", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := ts.do(t, http.MethodGet, "/livez", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, "rate_limited", decodeBody(t, rec)["error"])
}

func newTestServerWithLimit(t *testing.T, maxRequests int, window time.Duration) *testServer {
	t.Helper()

	st := memory.NewStore()
	svc := &service.SessionService{
		Store: st,
		AccessCtx: jwtx.SigningContext{
			Secret: []byte("access-secret"), TTL: time.Hour,
			Issuer: "journal-auth", Audience: "journal-app",
		},
		RefreshCtx: jwtx.SigningContext{
			Secret: []byte("refresh-secret"), TTL: time.Hour,
			Issuer: "journal-auth", Audience: "journal-app",
		},
	}
	router := authhttp.NewRouter(authhttp.RouterConfig{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:     st,
		Sessions:  svc,
		AccessCtx: svc.AccessCtx,
		RateLimit: httpx.RateLimitConfig{MaxRequests: maxRequests, Window: window},
		Cookies:   authhttp.CookieConfig{AccessTTL: time.Hour, RefreshTTL: time.Hour},
	})
	return &testServer{router: router, store: st, svc: svc}
}
