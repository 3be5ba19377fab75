package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront/internal/audit"
	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/domain/account"
	"storefront/internal/metrics"
	"storefront/internal/ratelimit"
	"storefront/internal/rbac"
	"storefront/internal/repository/memory"
	"storefront/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "correct-horse-battery"

type testServer struct {
	handler stdhttp.Handler
	store   *memory.AccountRepository
	codecs  *auth.Codecs
}

func newTestServer(t *testing.T, registerLimit int, opts ...func(*config.Config)) *testServer {
	t.Helper()

	pages := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(pages, "index.html"), []byte("<h1>shop</h1>"), 0o600))

	cfg := &config.Config{
		Env: config.EnvTest,
		Server: config.ServerConfig{
			Port:           "0",
			PagesDir:       pages,
			PrincipalRPS:   100,
			PrincipalBurst: 100,
		},
		Auth: config.AuthConfig{
			AdminSecret:     "admin-secret-for-server-tests",
			ManagerSecret:   "manager-secret-for-server-tests",
			UserSecret:      "user-secret-for-server-tests",
			AdminTokenTTL:   24 * time.Hour,
			ManagerTokenTTL: time.Hour,
			UserTokenTTL:    24 * time.Hour,
			CookieSameSite:  config.SameSiteLax,
			StoreTimeout:    time.Second,
		},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewAccountRepository()
	codecs := auth.NewCodecs(cfg.Auth)

	auditLogger := audit.NewLogger(audit.LogSink{Logger: logger}, logger)
	t.Cleanup(func() { _ = auditLogger.Close(context.Background()) })

	srv := NewServer(&ServerDependencies{
		Config:          cfg,
		Logger:          logger,
		Accounts:        store,
		Codecs:          codecs,
		Metrics:         metrics.New(),
		Audit:           auditLogger,
		RegisterLimiter: ratelimit.NewMemoryLimiter(registerLimit, time.Minute, 100),
	})

	return &testServer{handler: srv.Handler(), store: store, codecs: codecs}
}

func (s *testServer) seed(t *testing.T, kind account.Kind, email string, role rbac.Role) *account.Account {
	t.Helper()
	hash, err := password.HashWithCost(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	a, err := s.store.Create(context.Background(), account.CreateAccountInput{
		Kind: kind, Email: email, Name: "Seeded", PasswordHash: hash, Role: role,
	})
	require.NoError(t, err)
	return a
}

func (s *testServer) do(method, path string, body any, cookies ...*stdhttp.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "198.51.100.1:1234"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *stdhttp.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, 5)

	rec := s.do(stdhttp.MethodGet, "/health", nil)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestServer_GatekeeperRedirects(t *testing.T) {
	s := newTestServer(t, 5)

	tests := []struct {
		path     string
		location string
	}{
		{"/profile/orders", "/login?error=login-first"},
		{"/admin/dashboard", "/admin/auth?error=login-first"},
		{"/manager/sales/reports", "/manager/login?error=login-first"},
	}
	for _, tt := range tests {
		rec := s.do(stdhttp.MethodGet, tt.path, nil)
		assert.Equal(t, stdhttp.StatusTemporaryRedirect, rec.Code, tt.path)
		assert.Equal(t, tt.location, rec.Header().Get("Location"), tt.path)
	}

	rec := s.do(stdhttp.MethodGet, "/admin/auth", nil)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
}

func TestServer_UserJourney(t *testing.T) {
	s := newTestServer(t, 5)

	rec := s.do(stdhttp.MethodPost, "/api/auth/register", map[string]string{
		"name": "Ada", "email": "ada@shop.test", "password": testPassword,
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code)

	rec = s.do(stdhttp.MethodPost, "/api/auth/login", map[string]string{
		"email": "ada@shop.test", "password": testPassword,
	})
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	userCookie := sessionCookie(t, rec, auth.CookieUser)
	assert.NotContains(t, rec.Body.String(), `"token"`)
	assert.NotContains(t, rec.Body.String(), userCookie.Value)

	rec = s.do(stdhttp.MethodGet, "/api/session", nil, userCookie)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"user"`)

	rec = s.do(stdhttp.MethodGet, "/api/profile", nil, userCookie)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	rec = s.do(stdhttp.MethodGet, "/profile", nil, userCookie)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	rec = s.do(stdhttp.MethodGet, "/api/admin/managers", nil, userCookie)
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)

	rec = s.do(stdhttp.MethodGet, "/api/session", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
}

func TestServer_BearerProfile(t *testing.T) {
	s := newTestServer(t, 5)
	u := s.seed(t, account.KindUser, "bearer@shop.test", rbac.RoleUser)

	codec, err := s.codecs.For(auth.SchemeUser)
	require.NoError(t, err)
	token, err := codec.Sign(u.ID, rbac.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(stdhttp.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
}

func TestServer_AdminProvisionsManager(t *testing.T) {
	s := newTestServer(t, 5)
	s.seed(t, account.KindAdmin, "root@shop.test", rbac.RoleAdmin)

	rec := s.do(stdhttp.MethodPost, "/api/admin/auth/login", map[string]string{
		"email": "root@shop.test", "password": testPassword,
	})
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	adminCookie := sessionCookie(t, rec, auth.CookieAdmin)

	rec = s.do(stdhttp.MethodPost, "/api/admin/managers", map[string]string{
		"name": "Fin", "email": "fin@shop.test", "password": testPassword, "department": "finance",
	}, adminCookie)
	require.Equal(t, stdhttp.StatusCreated, rec.Code)

	rec = s.do(stdhttp.MethodPost, "/api/manager/auth/login", map[string]string{
		"email": "fin@shop.test", "password": testPassword, "role": "manager:finance",
	})
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	financeCookie := sessionCookie(t, rec, "manager-finance-token")

	rec = s.do(stdhttp.MethodGet, "/api/manager/finance/summary", nil, financeCookie)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	rec = s.do(stdhttp.MethodGet, "/api/manager/sales/summary", nil, financeCookie)
	assert.Equal(t, stdhttp.StatusForbidden, rec.Code)

	rec = s.do(stdhttp.MethodGet, "/manager/sales/leads", nil, financeCookie)
	assert.Equal(t, stdhttp.StatusTemporaryRedirect, rec.Code)

	rec = s.do(stdhttp.MethodGet, "/api/manager/legal/summary", nil, financeCookie)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)

	rec = s.do(stdhttp.MethodGet, "/api/manager/sales/summary", nil, adminCookie)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	rec = s.do(stdhttp.MethodGet, "/manager/finance/reports", nil, financeCookie)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
}

func TestServer_ForeignManagerCookieIsForbidden(t *testing.T) {
	s := newTestServer(t, 5)

	codec, err := s.codecs.For(auth.SchemeManager)
	require.NoError(t, err)
	token, err := codec.Sign("m-1", rbac.ManagerRole(rbac.DepartmentSales))
	require.NoError(t, err)

	// A sales token planted in the finance cookie verifies but names the wrong department.
	rec := s.do(stdhttp.MethodGet, "/api/manager/finance/summary", nil,
		&stdhttp.Cookie{Name: "manager-finance-token", Value: token})
	assert.Equal(t, stdhttp.StatusForbidden, rec.Code)
}

func TestServer_RegisterRateLimited(t *testing.T) {
	s := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		rec := s.do(stdhttp.MethodPost, "/api/auth/register", map[string]string{
			"name": "A", "email": "bad", "password": "x",
		})
		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	}

	rec := s.do(stdhttp.MethodPost, "/api/auth/register", map[string]string{
		"name": "A", "email": "bad", "password": "x",
	})
	assert.Equal(t, stdhttp.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t, 5)
	s.do(stdhttp.MethodGet, "/api/session", nil)

	rec := s.do(stdhttp.MethodGet, "/metrics/auth", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var snap metrics.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Positive(t, snap.TotalRequests)
	assert.NotEmpty(t, snap.Decisions)
}

func TestServer_UnknownAPIPathIsNotAPage(t *testing.T) {
	s := newTestServer(t, 5)

	rec := s.do(stdhttp.MethodGet, "/api/nope", nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "request_id")
}

func TestServer_ProfilingIsAdminOnly(t *testing.T) {
	s := newTestServer(t, 5, func(cfg *config.Config) { cfg.Server.Profiling = true })
	admin := s.seed(t, account.KindAdmin, "root@shop.test", rbac.RoleAdmin)

	rec := s.do(stdhttp.MethodGet, "/debug/memory", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)

	codec, err := s.codecs.For(auth.SchemeAdmin)
	require.NoError(t, err)
	token, err := codec.Sign(admin.ID, rbac.RoleAdmin)
	require.NoError(t, err)

	rec = s.do(stdhttp.MethodGet, "/debug/memory", nil, &stdhttp.Cookie{Name: auth.CookieAdmin, Value: token})
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
}
