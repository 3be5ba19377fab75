package handler

import (
	"context"
	"time"

	"storefront/internal/audit"
	"storefront/internal/domain/account"
	"storefront/internal/rbac"

	"github.com/labstack/echo/v4"
)

// Consumer-side interfaces defined by handlers

type AccountStore interface {
	Create(ctx context.Context, input account.CreateAccountInput) (*account.Account, error)
	GetByEmail(ctx context.Context, kind account.Kind, email string) (*account.Account, error)
	GetByID(ctx context.Context, kind account.Kind, id string) (*account.Account, error)
	ListByKind(ctx context.Context, kind account.Kind) ([]*account.Account, error)
	RecordFailedLogin(ctx context.Context, kind account.Kind, id string) error
	RecordSuccessfulLogin(ctx context.Context, kind account.Kind, id string, at time.Time) error
}

type SessionIssuer interface {
	Issue(c echo.Context, p rbac.Principal) (string, error)
	Clear(c echo.Context, name string)
}

type AuditRecorder interface {
	Record(c echo.Context, e audit.Entry)
}

type LoginCounter interface {
	RecordLogin(scheme string, success bool)
}
