package mongo

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/account"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second

	errFailedConnectFmt     = "failed to connect to mongo: %w"
	errFailedPingFmt        = "failed to ping mongo: %w"
	errFailedCreateIndexFmt = "failed to create index on %s: %w"
	errFailedInsertFmt      = "failed to create account: %w"
	errFailedFindFmt        = "failed to get account: %w"
	errFailedListFmt        = "failed to list accounts: %w"
	errFailedDecodeFmt      = "failed to decode account: %w"
	errFailedUpdateFmt      = "failed to update account: %w"
	errAccountNotFound      = "account not found"
	errAccountExists        = "account with this email already exists"
)

// collections keeps each account kind in its own collection.
var collections = map[account.Kind]string{
	account.KindAdmin:   "admins",
	account.KindManager: "managers",
	account.KindUser:    "users",
}

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func New(ctx context.Context, cfg *config.MongoConfig) (*DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf(errFailedConnectFmt, err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, pingTimeout)
	defer cancelPing()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf(errFailedPingFmt, err)
	}

	return &DB{Client: client, Database: client.Database(cfg.Database)}, nil
}

// EnsureIndexes creates the unique email index on every account collection.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	for _, name := range collections {
		_, err := db.Database.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf(errFailedCreateIndexFmt, name, err)
		}
	}
	return nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}
