package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/rbac"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGatekeeper(codecs *Codecs, rec Recorder, hook DenialHook) *Gatekeeper {
	return NewGatekeeper(DefaultRules(), NewResolver(codecs, nil, nil), rbac.NewGuard(), nil, rec, hook)
}

func serveGate(g *Gatekeeper, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(g.Middleware())
	e.GET("/*", func(c echo.Context) error { return c.String(http.StatusOK, "page") })
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGatekeeper_Redirects(t *testing.T) {
	codecs := newTestCodecs()
	g := newTestGatekeeper(codecs, nil, nil)

	sales := sign(t, codecs, SchemeManager, "m-1", rbac.ManagerRole(rbac.DepartmentSales))
	user := sign(t, codecs, SchemeUser, "u-1", rbac.RoleUser)

	tests := []struct {
		name     string
		path     string
		cookies  map[string]string
		location string
	}{
		{"anonymous profile", "/profile/anything", nil, "/login?error=login-first"},
		{"anonymous admin", "/admin/dashboard", nil, "/admin/auth?error=login-first"},
		{"user on admin", "/admin", map[string]string{CookieUser: user}, "/admin/auth?error=login-first"},
		{"sales manager on finance", "/manager/finance/reports", map[string]string{ManagerCookieName(rbac.DepartmentSales): sales}, "/manager/login?error=login-first"},
		{"sales token in finance cookie", "/manager/finance", map[string]string{ManagerCookieName(rbac.DepartmentFinance): sales}, "/manager/login?error=login-first"},
		{"manager on profile", "/profile", map[string]string{ManagerCookieName(rbac.DepartmentSales): sales}, "/login?error=login-first"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveGate(g, requestWithCookies(tt.path, tt.cookies))
			assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get(echo.HeaderLocation))
		})
	}
}

func TestGatekeeper_Passes(t *testing.T) {
	codecs := newTestCodecs()
	rec := newCountingRecorder()
	g := newTestGatekeeper(codecs, rec, nil)

	admin := sign(t, codecs, SchemeAdmin, "a-1", rbac.RoleAdmin)
	sales := sign(t, codecs, SchemeManager, "m-1", rbac.ManagerRole(rbac.DepartmentSales))
	user := sign(t, codecs, SchemeUser, "u-1", rbac.RoleUser)

	tests := []struct {
		name    string
		path    string
		cookies map[string]string
	}{
		{"unprotected", "/products", nil},
		{"admin login page", "/admin/auth", nil},
		{"manager login page", "/manager/login", nil},
		{"department login page", "/manager/sales/login", nil},
		{"admin", "/admin/settings", map[string]string{CookieAdmin: admin}},
		{"admin on manager area", "/manager/marketing", map[string]string{CookieAdmin: admin}},
		{"sales manager", "/manager/sales/leads", map[string]string{ManagerCookieName(rbac.DepartmentSales): sales}},
		{"user profile", "/profile", map[string]string{CookieUser: user}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := serveGate(g, requestWithCookies(tt.path, tt.cookies))
			assert.Equal(t, http.StatusOK, res.Code)
		})
	}

	assert.Equal(t, 1, rec.decisions["page/admin/allowed"])
	assert.Equal(t, 1, rec.decisions["page/profile/allowed"])
}

func TestGatekeeper_ForgedAdminRoleDenied(t *testing.T) {
	cfg := testAuthConfig()
	var denied []rbac.Decision
	g := newTestGatekeeper(newTestCodecs(), nil, func(_ echo.Context, policy string, d rbac.Decision, _ Resolution) {
		assert.Equal(t, PolicyAdmin, policy)
		denied = append(denied, d)
	})

	forged := forgedToken(t, cfg.AdminSecret, "a-1", rbac.RoleUser)
	rec := serveGate(g, requestWithCookies("/admin", map[string]string{CookieAdmin: forged}))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	require.Len(t, denied, 1)
	assert.Equal(t, rbac.DecisionForbidden, denied[0])
}

func TestGatekeeper_Inspect(t *testing.T) {
	codecs := newTestCodecs()
	g := newTestGatekeeper(codecs, nil, nil)

	v := g.Inspect(requestWithCookies("/about", nil))
	assert.False(t, v.Matched)
	assert.Equal(t, rbac.DecisionAllowed, v.Decision)

	v = g.Inspect(requestWithCookies("/profile", nil))
	assert.True(t, v.Matched)
	assert.Equal(t, rbac.DecisionUnauthorized, v.Decision)
	assert.Equal(t, "/login?error=login-first", v.Redirect())
}
