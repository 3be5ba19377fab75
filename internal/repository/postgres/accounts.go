package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/account"
	"storefront/internal/rbac"
	apperrors "storefront/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, kind, email, name, password_hash, role, failed_login_attempts, last_login_at, created_at, updated_at`

type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		a    account.Account
		id   uuid.UUID
		kind string
		role string
	)
	err := row.Scan(
		&id,
		&kind,
		&a.Email,
		&a.Name,
		&a.PasswordHash,
		&role,
		&a.FailedLoginAttempts,
		&a.LastLoginAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.ID = id.String()
	a.Kind = account.Kind(kind)
	a.Role = rbac.Role(role)
	return &a, nil
}

func (r *AccountRepository) Create(ctx context.Context, input account.CreateAccountInput) (*account.Account, error) {
	query := `
		INSERT INTO accounts (kind, email, name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + accountColumns

	a, err := scanAccount(r.db.Pool.QueryRow(ctx, query,
		string(input.Kind),
		normalizeEmail(input.Email),
		input.Name,
		input.PasswordHash,
		string(input.Role),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(errAccountExists)
		}
		return nil, errFailedCreateAccount(err)
	}

	return a, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, kind account.Kind, email string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE kind = $1 AND email = $2`

	a, err := scanAccount(r.db.Pool.QueryRow(ctx, query, string(kind), normalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(errAccountNotFound)
		}
		return nil, errFailedGetAccount(err)
	}

	return a, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, kind account.Kind, id string) (*account.Account, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.NotFound(errAccountNotFound)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE kind = $1 AND id = $2`

	a, err := scanAccount(r.db.Pool.QueryRow(ctx, query, string(kind), uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(errAccountNotFound)
		}
		return nil, errFailedGetAccount(err)
	}

	return a, nil
}

func (r *AccountRepository) ListByKind(ctx context.Context, kind account.Kind) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE kind = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, string(kind))
	if err != nil {
		return nil, errFailedListAccounts(err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, errFailedScanAccount(err)
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateAccounts(err)
	}

	return accounts, nil
}

func (r *AccountRepository) RecordFailedLogin(ctx context.Context, kind account.Kind, id string) error {
	query := `
		UPDATE accounts
		SET failed_login_attempts = failed_login_attempts + 1, updated_at = NOW()
		WHERE kind = $1 AND id = $2
	`
	return r.exec(ctx, query, string(kind), id)
}

func (r *AccountRepository) RecordSuccessfulLogin(ctx context.Context, kind account.Kind, id string, at time.Time) error {
	query := `
		UPDATE accounts
		SET failed_login_attempts = 0, last_login_at = $3, updated_at = NOW()
		WHERE kind = $1 AND id = $2
	`
	return r.exec(ctx, query, string(kind), id, at)
}

func (r *AccountRepository) exec(ctx context.Context, query, kind, id string, args ...any) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperrors.NotFound(errAccountNotFound)
	}

	tag, err := r.db.Pool.Exec(ctx, query, append([]any{kind, uid}, args...)...)
	if err != nil {
		return errFailedUpdateAccount(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(errAccountNotFound)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
