package auth

import (
	"net/http"

	"storefront/internal/rbac"
	apperrors "storefront/pkg/errors"

	"github.com/labstack/echo/v4"
)

func setPrincipal(c echo.Context, res Resolution) {
	c.Set(ContextKeyPrincipal, res.Principal)
	c.Set(ContextKeyScheme, res.Scheme)
}

// GetPrincipal returns the principal stored by a guard earlier in the chain.
func GetPrincipal(c echo.Context) (*rbac.Principal, error) {
	p, ok := c.Get(ContextKeyPrincipal).(*rbac.Principal)
	if !ok || p == nil {
		return nil, apperrors.Unauthorized(msgPrincipalMissing)
	}
	return p, nil
}

// GetScheme returns the scheme the principal was resolved under.
func GetScheme(c echo.Context) Scheme {
	s, _ := c.Get(ContextKeyScheme).(Scheme)
	return s
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyError: message})
}

func decisionStatus(d rbac.Decision) (int, string) {
	if d == rbac.DecisionForbidden {
		return http.StatusForbidden, msgForbidden
	}
	return http.StatusUnauthorized, msgAuthenticationRequired
}
