package postgres

import (
	"context"

	"storefront/internal/repository"
)

type AuditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, e repository.AuditEvent) error {
	query := `
		INSERT INTO auth_audit_events (event_type, actor, role, email, path, ip, outcome, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool.Exec(ctx, query, e.Type, e.Actor, e.Role, e.Email, e.Path, e.IP, e.Outcome, e.Detail, e.CreatedAt)
	if err != nil {
		return errFailedInsertAudit(err)
	}
	return nil
}
