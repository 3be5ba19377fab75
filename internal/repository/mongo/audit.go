package mongo

import (
	"context"
	"fmt"

	"storefront/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	auditCollection         = "auth_audit_events"
	errFailedAuditInsertFmt = "failed to insert audit event: %w"
)

type AuditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, e repository.AuditEvent) error {
	_, err := r.db.Database.Collection(auditCollection).InsertOne(ctx, bson.M{
		"event_type": e.Type,
		"actor":      e.Actor,
		"role":       e.Role,
		"email":      e.Email,
		"path":       e.Path,
		"ip":         e.IP,
		"outcome":    e.Outcome,
		"detail":     e.Detail,
		"created_at": e.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf(errFailedAuditInsertFmt, err)
	}
	return nil
}
