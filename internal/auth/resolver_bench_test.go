package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/rbac"
)

// BenchmarkResolve_UserBehindAllSchemes measures the worst case: every
// higher-ranked carrier is inspected before the user cookie verifies.
func BenchmarkResolve_UserBehindAllSchemes(b *testing.B) {
	codecs := newTestCodecs()
	codec, _ := codecs.For(SchemeUser)
	token, _ := codec.Sign("u-1", rbac.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: CookieUser, Value: token})

	resolver := NewResolver(codecs, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	accept := SessionPolicy().Accept

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if res := resolver.Resolve(req, accept); res.Principal == nil {
			b.Fatal("expected a principal")
		}
	}
}
