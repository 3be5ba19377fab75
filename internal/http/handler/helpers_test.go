package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/audit"
	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/domain/account"
	"storefront/internal/rbac"
	"storefront/internal/repository/memory"
	"storefront/pkg/password"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "correct-horse-battery"

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recordingAudit) Record(_ echo.Context, e audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingAudit) last() audit.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return audit.Entry{}
	}
	return r.entries[len(r.entries)-1]
}

type loginCounter struct {
	success, failure int
}

func (l *loginCounter) RecordLogin(_ string, success bool) {
	if success {
		l.success++
		return
	}
	l.failure++
}

type fixture struct {
	store    *memory.AccountRepository
	codecs   *auth.Codecs
	audit    *recordingAudit
	logins   *loginCounter
	auth     *AuthHandler
	accounts *AccountHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	codecs := auth.NewCodecs(config.AuthConfig{
		AdminSecret:     "admin-secret-for-handler-tests",
		ManagerSecret:   "manager-secret-for-handler-tests",
		UserSecret:      "user-secret-for-handler-tests",
		AdminTokenTTL:   24 * time.Hour,
		ManagerTokenTTL: time.Hour,
		UserTokenTTL:    24 * time.Hour,
	})
	f := &fixture{
		store:  memory.NewAccountRepository(),
		codecs: codecs,
		audit:  &recordingAudit{},
		logins: &loginCounter{},
	}
	cfg := AuthHandlerConfig{StoreTimeout: time.Second, HashCost: bcrypt.MinCost}
	f.auth = NewAuthHandler(f.store, auth.NewCookieIssuer(codecs, false, config.SameSiteLax), f.audit, f.logins, nil, cfg)
	f.accounts = NewAccountHandler(f.store, f.audit, nil, cfg)
	return f
}

func (f *fixture) seed(t *testing.T, kind account.Kind, email string, role rbac.Role) *account.Account {
	t.Helper()
	hash, err := password.HashWithCost(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	a, err := f.store.Create(context.Background(), account.CreateAccountInput{
		Kind:         kind,
		Email:        email,
		Name:         "Test " + string(kind),
		PasswordHash: hash,
		Role:         role,
	})
	require.NoError(t, err)
	return a
}

func jsonContext(method, path string, body any) (echo.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func withPrincipal(c echo.Context, p rbac.Principal, s auth.Scheme) {
	c.Set(auth.ContextKeyPrincipal, &p)
	c.Set(auth.ContextKeyScheme, s)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
