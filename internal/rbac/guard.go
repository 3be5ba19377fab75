package rbac

import "fmt"

// Decision is the outcome of a role check.
type Decision int

const (
	DecisionUnauthorized Decision = iota
	DecisionForbidden
	DecisionAllowed
)

func (d Decision) String() string {
	switch d {
	case DecisionAllowed:
		return "allowed"
	case DecisionForbidden:
		return "forbidden"
	default:
		return "unauthorized"
	}
}

// Guard enforces an allowed-role set. The superuser role passes every check.
type Guard struct {
	superuser Role
}

// NewGuard returns a Guard with admin as superuser.
func NewGuard() *Guard {
	return &Guard{superuser: RoleAdmin}
}

// Authorize decides whether p may access a resource open to allowed.
func (g *Guard) Authorize(p *Principal, allowed ...Role) Decision {
	return decisionOf(g.Check(p, allowed...))
}

// Check is Authorize with the reason attached, for logging.
func (g *Guard) Check(p *Principal, allowed ...Role) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if !p.Role.Valid() {
		return fmt.Errorf(errPrincipalRoleFmt, ErrDenied, p.Role)
	}
	if p.Role == g.superuser {
		return nil
	}
	for _, r := range allowed {
		if p.Role == r {
			return nil
		}
	}
	return fmt.Errorf(errRoleNotAllowedFmt, ErrDenied, p.Role, allowed)
}

func decisionOf(err error) Decision {
	switch {
	case err == nil:
		return DecisionAllowed
	case err == ErrUnauthenticated:
		return DecisionUnauthorized
	default:
		return DecisionForbidden
	}
}
