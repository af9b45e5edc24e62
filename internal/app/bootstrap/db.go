// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/driftwoodapp/driftwood/internal/app/system/identity"
	"github.com/driftwoodapp/driftwood/internal/app/system/objstore"
)

// ConnectDB establishes the MongoDB connection and builds the other
// backend clients (object storage, identity provider) the app depends on.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	clientOpts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	blobs, err := buildBlobStore(ctx, appCfg, logger)
	if err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, err
	}

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		Blobs:         blobs,
		Identity:      buildIdentityProvider(appCfg, logger),
	}, nil
}

func buildBlobStore(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (objstore.Store, error) {
	switch appCfg.StorageType {
	case "s3":
		logger.Info("using S3 object storage",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("prefix", appCfg.StorageS3Prefix))
		return objstore.NewS3(ctx, objstore.S3Options{
			Region:    appCfg.StorageS3Region,
			Bucket:    appCfg.StorageS3Bucket,
			Prefix:    appCfg.StorageS3Prefix,
			AccessKey: appCfg.StorageS3AccessKey,
			SecretKey: appCfg.StorageS3SecretKey,
		})
	default:
		logger.Info("using local object storage", zap.String("path", appCfg.StorageLocalPath))
		return objstore.NewLocal(appCfg.StorageLocalPath)
	}
}

func buildIdentityProvider(appCfg AppConfig, logger *zap.Logger) identity.Provider {
	if appCfg.IdentityProviderURL == "" {
		logger.Warn("identity_provider_url is blank; account deletions will not reach the provider")
		return identity.Disabled{}
	}
	return identity.NewClient(appCfg.IdentityProviderURL, appCfg.IdentityProviderKey)
}

// EnsureSchema creates the indexes Driftwood relies on. Index builds are
// idempotent; existing indexes with the same spec are left alone.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	type idx struct {
		collection string
		model      mongo.IndexModel
	}

	indexes := []idx{
		// Profiles are keyed by UID (_id), but local login looks users up
		// by email. Partial so provider-only accounts without an email do
		// not collide on "".
		{"users", mongo.IndexModel{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$gt": ""}}),
		}},

		{"groups", mongo.IndexModel{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"group_members", mongo.IndexModel{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "user_uid", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"group_members", mongo.IndexModel{
			Keys: bson.D{{Key: "user_uid", Value: 1}},
		}},

		{"friend_requests", mongo.IndexModel{
			Keys:    bson.D{{Key: "from_uid", Value: 1}, {Key: "to_uid", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"friendships", mongo.IndexModel{
			Keys: bson.D{{Key: "uids", Value: 1}},
		}},

		// Thread lookups for the normalized comment collections.
		{"post_comments", mongo.IndexModel{
			Keys: bson.D{{Key: "post_id", Value: 1}},
		}},
		{"post_replies", mongo.IndexModel{
			Keys: bson.D{{Key: "post_id", Value: 1}},
		}},
		{"group_posts", mongo.IndexModel{
			Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "created_at", Value: -1}},
		}},
		{"group_comments", mongo.IndexModel{
			Keys: bson.D{{Key: "post_id", Value: 1}},
		}},
		{"group_replies", mongo.IndexModel{
			Keys: bson.D{{Key: "comment_id", Value: 1}},
		}},
	}

	for _, ix := range indexes {
		if _, err := db.Collection(ix.collection).Indexes().CreateOne(ctx, ix.model); err != nil {
			return fmt.Errorf("create index on %s: %w", ix.collection, err)
		}
	}

	logger.Info("schema ensured", zap.Int("indexes", len(indexes)))
	return nil
}
