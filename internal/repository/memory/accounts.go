package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain/account"
	apperrors "storefront/pkg/errors"

	"github.com/google/uuid"
)

const (
	errAccountNotFound = "account not found"
	errAccountExists   = "account with this email already exists"
)

// AccountRepository keeps accounts in process memory. Used by tests and
// local development.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*account.Account
	byEmail  map[string]string
	now      func() time.Time
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]*account.Account),
		byEmail:  make(map[string]string),
		now:      time.Now,
	}
}

func emailKey(kind account.Kind, email string) string {
	return string(kind) + "|" + strings.ToLower(strings.TrimSpace(email))
}

func (r *AccountRepository) Create(_ context.Context, input account.CreateAccountInput) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(input.Kind, input.Email)
	if _, ok := r.byEmail[key]; ok {
		return nil, apperrors.Conflict(errAccountExists)
	}

	now := r.now()
	a := &account.Account{
		ID:           uuid.NewString(),
		Kind:         input.Kind,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Name:         input.Name,
		PasswordHash: input.PasswordHash,
		Role:         input.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.accounts[a.ID] = a
	r.byEmail[key] = a.ID

	out := *a
	return &out, nil
}

func (r *AccountRepository) GetByEmail(_ context.Context, kind account.Kind, email string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailKey(kind, email)]
	if !ok {
		return nil, apperrors.NotFound(errAccountNotFound)
	}
	out := *r.accounts[id]
	return &out, nil
}

func (r *AccountRepository) GetByID(_ context.Context, kind account.Kind, id string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok || a.Kind != kind {
		return nil, apperrors.NotFound(errAccountNotFound)
	}
	out := *a
	return &out, nil
}

func (r *AccountRepository) ListByKind(_ context.Context, kind account.Kind) ([]*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*account.Account
	for _, a := range r.accounts {
		if a.Kind == kind {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *AccountRepository) RecordFailedLogin(_ context.Context, kind account.Kind, id string) error {
	return r.update(kind, id, func(a *account.Account) {
		a.FailedLoginAttempts++
	})
}

func (r *AccountRepository) RecordSuccessfulLogin(_ context.Context, kind account.Kind, id string, at time.Time) error {
	return r.update(kind, id, func(a *account.Account) {
		a.FailedLoginAttempts = 0
		a.LastLoginAt = &at
	})
}

func (r *AccountRepository) update(kind account.Kind, id string, fn func(*account.Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok || a.Kind != kind {
		return apperrors.NotFound(errAccountNotFound)
	}
	fn(a)
	a.UpdatedAt = r.now()
	return nil
}
