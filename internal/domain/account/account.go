package account

import (
	"time"

	"storefront/internal/rbac"
)

// Kind selects the credential collection an account lives in. Each login
// scheme reads only its own kind.
type Kind string

const (
	KindAdmin   Kind = "admin"
	KindManager Kind = "manager"
	KindUser    Kind = "user"
)

// KindFor maps a role onto the collection that stores it.
func KindFor(r rbac.Role) (Kind, bool) {
	switch {
	case r == rbac.RoleAdmin:
		return KindAdmin, true
	case r == rbac.RoleUser:
		return KindUser, true
	case r.IsManager():
		return KindManager, true
	default:
		return "", false
	}
}

func (k Kind) Valid() bool {
	return k == KindAdmin || k == KindManager || k == KindUser
}

type Account struct {
	ID                  string
	Kind                Kind
	Email               string
	Name                string
	PasswordHash        string
	Role                rbac.Role
	FailedLoginAttempts int
	LastLoginAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Principal is the identity an account signs in as.
func (a *Account) Principal() rbac.Principal {
	return rbac.Principal{ID: a.ID, Role: a.Role}
}

type CreateAccountInput struct {
	Kind         Kind
	Email        string
	Name         string
	PasswordHash string
	Role         rbac.Role
}
