package rbac

import "errors"

var (
	ErrDenied          = errors.New("authorization denied")
	ErrUnauthenticated = errors.New("no identity resolved")
	ErrInvalidRole     = errors.New("invalid role")
)

const (
	errUnknownRoleFmt       = "%w: %q"
	errUnknownDepartmentFmt = "%w: unknown department %q"
	errRoleNotAllowedFmt    = "%w: role '%s' not in %v"
	errPrincipalRoleFmt     = "%w: principal carries unknown role '%s'"
)
