package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/config"
	"storefront/internal/rbac"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestCookieIssuer_Issue(t *testing.T) {
	codecs := newTestCodecs()
	issuer := NewCookieIssuer(codecs, true, config.SameSiteStrict)

	tests := []struct {
		role   rbac.Role
		cookie string
		maxAge int
	}{
		{rbac.RoleAdmin, "token", 24 * 3600},
		{rbac.ManagerRole(rbac.DepartmentFinance), "manager-finance-token", 3600},
		{rbac.RoleUser, "user-token", 24 * 3600},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

			token, err := issuer.Issue(c, rbac.Principal{ID: "id-1", Role: tt.role})
			require.NoError(t, err)

			cookie := findCookie(t, rec, tt.cookie)
			assert.Equal(t, token, cookie.Value)
			assert.Equal(t, tt.maxAge, cookie.MaxAge)
			assert.True(t, cookie.HttpOnly)
			assert.True(t, cookie.Secure)
			assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
			assert.Equal(t, "/", cookie.Path)

			res := NewResolver(codecs, nil, nil).Resolve(requestWithCookies("/", map[string]string{tt.cookie: token}), allCookies())
			require.NotNil(t, res.Principal)
			assert.Equal(t, tt.role, res.Principal.Role)
		})
	}
}

func TestCookieIssuer_Clear(t *testing.T) {
	issuer := NewCookieIssuer(newTestCodecs(), false, config.SameSiteLax)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	issuer.Clear(c, CookieUser)

	cookie := findCookie(t, rec, CookieUser)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestCookieNameFor(t *testing.T) {
	name, ok := CookieNameFor(rbac.ManagerRole(rbac.DepartmentSales))
	assert.True(t, ok)
	assert.Equal(t, "manager-sales-token", name)

	_, ok = CookieNameFor("manager:legal")
	assert.False(t, ok)
}
