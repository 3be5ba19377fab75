package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/account"
	"storefront/internal/rbac"
	apperrors "storefront/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type accountDocument struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Email               string             `bson:"email"`
	Name                string             `bson:"name"`
	PasswordHash        string             `bson:"password_hash"`
	Role                string             `bson:"role"`
	FailedLoginAttempts int                `bson:"failed_login_attempts"`
	LastLoginAt         *time.Time         `bson:"last_login_at,omitempty"`
	CreatedAt           time.Time          `bson:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at"`
}

func (d *accountDocument) toAccount(kind account.Kind) *account.Account {
	return &account.Account{
		ID:                  d.ID.Hex(),
		Kind:                kind,
		Email:               d.Email,
		Name:                d.Name,
		PasswordHash:        d.PasswordHash,
		Role:                rbac.Role(d.Role),
		FailedLoginAttempts: d.FailedLoginAttempts,
		LastLoginAt:         d.LastLoginAt,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

type AccountRepository struct {
	db  *DB
	now func() time.Time
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db, now: time.Now}
}

func (r *AccountRepository) collection(kind account.Kind) (*mongo.Collection, error) {
	name, ok := collections[kind]
	if !ok {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown account kind %q", kind))
	}
	return r.db.Database.Collection(name), nil
}

func (r *AccountRepository) Create(ctx context.Context, input account.CreateAccountInput) (*account.Account, error) {
	coll, err := r.collection(input.Kind)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	doc := accountDocument{
		ID:           primitive.NewObjectID(),
		Email:        normalizeEmail(input.Email),
		Name:         input.Name,
		PasswordHash: input.PasswordHash,
		Role:         string(input.Role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict(errAccountExists)
		}
		return nil, fmt.Errorf(errFailedInsertFmt, err)
	}

	return doc.toAccount(input.Kind), nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, kind account.Kind, email string) (*account.Account, error) {
	return r.findOne(ctx, kind, bson.M{"email": normalizeEmail(email)})
}

func (r *AccountRepository) GetByID(ctx context.Context, kind account.Kind, id string) (*account.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NotFound(errAccountNotFound)
	}
	return r.findOne(ctx, kind, bson.M{"_id": oid})
}

func (r *AccountRepository) findOne(ctx context.Context, kind account.Kind, filter bson.M) (*account.Account, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return nil, err
	}

	var doc accountDocument
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound(errAccountNotFound)
		}
		return nil, fmt.Errorf(errFailedFindFmt, err)
	}
	return doc.toAccount(kind), nil
}

func (r *AccountRepository) ListByKind(ctx context.Context, kind account.Kind) ([]*account.Account, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf(errFailedListFmt, err)
	}
	defer cur.Close(ctx)

	var accounts []*account.Account
	for cur.Next(ctx) {
		var doc accountDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf(errFailedDecodeFmt, err)
		}
		accounts = append(accounts, doc.toAccount(kind))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf(errFailedListFmt, err)
	}

	return accounts, nil
}

func (r *AccountRepository) RecordFailedLogin(ctx context.Context, kind account.Kind, id string) error {
	return r.updateOne(ctx, kind, id, bson.M{
		"$inc": bson.M{"failed_login_attempts": 1},
		"$set": bson.M{"updated_at": r.now().UTC()},
	})
}

func (r *AccountRepository) RecordSuccessfulLogin(ctx context.Context, kind account.Kind, id string, at time.Time) error {
	return r.updateOne(ctx, kind, id, bson.M{
		"$set": bson.M{
			"failed_login_attempts": 0,
			"last_login_at":         at.UTC(),
			"updated_at":            r.now().UTC(),
		},
	})
}

func (r *AccountRepository) updateOne(ctx context.Context, kind account.Kind, id string, update bson.M) error {
	coll, err := r.collection(kind)
	if err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.NotFound(errAccountNotFound)
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf(errFailedUpdateFmt, err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound(errAccountNotFound)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
