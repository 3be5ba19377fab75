package repository

import (
	"context"
	"time"

	"storefront/internal/domain/account"
)

// AccountRepository stores credentials for every account kind. Lookups are
// scoped by kind so an email registered as a user never matches an admin
// login.
type AccountRepository interface {
	Create(ctx context.Context, input account.CreateAccountInput) (*account.Account, error)
	GetByEmail(ctx context.Context, kind account.Kind, email string) (*account.Account, error)
	GetByID(ctx context.Context, kind account.Kind, id string) (*account.Account, error)
	ListByKind(ctx context.Context, kind account.Kind) ([]*account.Account, error)
	RecordFailedLogin(ctx context.Context, kind account.Kind, id string) error
	RecordSuccessfulLogin(ctx context.Context, kind account.Kind, id string, at time.Time) error
}

// AuditRepository persists authentication events.
type AuditRepository interface {
	Insert(ctx context.Context, event AuditEvent) error
}

type AuditEvent struct {
	Type      string
	Actor     string
	Role      string
	Email     string
	Path      string
	IP        string
	Outcome   string
	Detail    string
	CreatedAt time.Time
}
