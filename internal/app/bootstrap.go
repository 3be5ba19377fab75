package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain/account"
	"storefront/internal/rbac"
	"storefront/internal/repository"
	apperrors "storefront/pkg/errors"
	"storefront/pkg/password"
	"storefront/pkg/validator"
)

// EnsureAdmin creates the admin account for email unless one already exists.
// An existing account keeps its password.
func EnsureAdmin(ctx context.Context, accounts repository.AccountRepository, email, pw string, cost int) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validator.Email(email); err != nil {
		return false, err
	}
	if err := password.Validate(pw); err != nil {
		return false, err
	}

	_, err := accounts.GetByEmail(ctx, account.KindAdmin, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := password.HashWithCost(pw, cost)
	if err != nil {
		return false, err
	}

	_, err = accounts.Create(ctx, account.CreateAccountInput{
		Kind:         account.KindAdmin,
		Email:        email,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         rbac.RoleAdmin,
	})
	if errors.Is(err, apperrors.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
