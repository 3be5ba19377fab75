package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/rbac"

	"github.com/stretchr/testify/require"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AdminSecret:     "admin-secret-for-tests",
		ManagerSecret:   "manager-secret-for-tests",
		UserSecret:      "user-secret-for-tests",
		AdminTokenTTL:   24 * time.Hour,
		ManagerTokenTTL: time.Hour,
		UserTokenTTL:    24 * time.Hour,
	}
}

func newTestCodecs() *Codecs {
	return NewCodecs(testAuthConfig())
}

func sign(t *testing.T, codecs *Codecs, s Scheme, id string, role rbac.Role) string {
	t.Helper()
	c, err := codecs.For(s)
	require.NoError(t, err)
	token, err := c.Sign(id, role)
	require.NoError(t, err)
	return token
}

func requestWithCookies(path string, cookies map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return req
}

type countingRecorder struct {
	attempts  map[string]int
	decisions map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{attempts: map[string]int{}, decisions: map[string]int{}}
}

func (r *countingRecorder) RecordAttempt(scheme, outcome string) {
	r.attempts[scheme+"/"+outcome]++
}

func (r *countingRecorder) RecordDecision(entry, policy, decision string) {
	r.decisions[entry+"/"+policy+"/"+decision]++
}
