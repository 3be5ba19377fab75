package auth

import (
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/rbac"

	"github.com/labstack/echo/v4"
)

// CookieIssuer writes and clears session cookies. Cookie lifetime always
// equals the lifetime of the token it carries.
type CookieIssuer struct {
	codecs   *Codecs
	secure   bool
	sameSite http.SameSite
	now      func() time.Time
}

func NewCookieIssuer(codecs *Codecs, secure bool, sameSite string) *CookieIssuer {
	ss := http.SameSiteLaxMode
	if sameSite == config.SameSiteStrict {
		ss = http.SameSiteStrictMode
	}
	return &CookieIssuer{codecs: codecs, secure: secure, sameSite: ss, now: time.Now}
}

// Issue signs a token for p and sets it on the scheme cookie for p's role.
// The token is returned for clients that prefer the bearer transport.
func (i *CookieIssuer) Issue(c echo.Context, p rbac.Principal) (string, error) {
	name, ok := CookieNameFor(p.Role)
	if !ok {
		return "", rbac.ErrInvalidRole
	}
	token, codec, err := i.codecs.SignFor(p)
	if err != nil {
		return "", err
	}

	ttl := codec.TTL()
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    token,
		Path:     cookiePath,
		MaxAge:   int(ttl / time.Second),
		Expires:  i.now().Add(ttl),
		HttpOnly: true,
		Secure:   i.secure,
		SameSite: i.sameSite,
	})
	return token, nil
}

// Clear expires the named cookie.
func (i *CookieIssuer) Clear(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     cookiePath,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   i.secure,
		SameSite: i.sameSite,
	})
}
