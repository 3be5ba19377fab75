package auth

import (
	"storefront/internal/rbac"
)

// Scheme is an identity family with its own secret, cookie and token lifetime.
type Scheme string

const (
	SchemeAdmin   Scheme = "admin"
	SchemeManager Scheme = "manager"
	SchemeUser    Scheme = "user"
)

// schemeOrder is the resolution precedence when several identities are present.
var schemeOrder = []Scheme{SchemeAdmin, SchemeManager, SchemeUser}

func (s Scheme) rank() int {
	for i, known := range schemeOrder {
		if s == known {
			return i
		}
	}
	return len(schemeOrder)
}

// Admits reports whether a token of this scheme may carry role r.
func (s Scheme) Admits(r rbac.Role) bool {
	switch s {
	case SchemeAdmin:
		return r == rbac.RoleAdmin
	case SchemeManager:
		return r.IsManager()
	case SchemeUser:
		return r == rbac.RoleUser
	default:
		return false
	}
}

// SchemeFor maps a role onto the scheme that issues it.
func SchemeFor(r rbac.Role) (Scheme, bool) {
	for _, s := range schemeOrder {
		if s.Admits(r) {
			return s, true
		}
	}
	return "", false
}

// Transport names where a token is read from.
type Transport string

const (
	TransportCookie Transport = "cookie"
	TransportBearer Transport = "bearer"
)

// ManagerCookieName returns the cookie holding a manager token for d.
func ManagerCookieName(d rbac.Department) string {
	return managerCookiePrefix + string(d) + managerCookieSuffix
}

// CookieNameFor returns the cookie a principal with role r is issued into.
func CookieNameFor(r rbac.Role) (string, bool) {
	switch {
	case r == rbac.RoleAdmin:
		return CookieAdmin, true
	case r == rbac.RoleUser:
		return CookieUser, true
	case r.IsManager():
		d, _ := r.Department()
		return ManagerCookieName(d), true
	default:
		return "", false
	}
}
