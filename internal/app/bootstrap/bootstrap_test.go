package bootstrap

import (
	"testing"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/driftwoodapp/driftwood/internal/testutil"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsureSchema_UniqueGroupNames(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	deps := DBDeps{MongoDatabase: db}
	if err := EnsureSchema(ctx, nil, AppConfig{}, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	groups := db.Collection("groups")
	if _, err := groups.InsertOne(ctx, bson.M{"_id": primitive.NewObjectID(), "name": "Hikers", "name_ci": "hikers"}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	_, err := groups.InsertOne(ctx, bson.M{"_id": primitive.NewObjectID(), "name": "HIKERS", "name_ci": "hikers"})
	if !wafflemongo.IsDup(err) {
		t.Fatalf("expected duplicate-key error, got %v", err)
	}
}

func TestEnsureSchema_OneMembershipPerUserPerGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	deps := DBDeps{MongoDatabase: db}
	if err := EnsureSchema(ctx, nil, AppConfig{}, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	groupID := primitive.NewObjectID()
	members := db.Collection("group_members")
	if _, err := members.InsertOne(ctx, bson.M{"group_id": groupID, "user_uid": "a1", "role": "member"}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	_, err := members.InsertOne(ctx, bson.M{"group_id": groupID, "user_uid": "a1", "role": "moderator"})
	if !wafflemongo.IsDup(err) {
		t.Fatalf("expected duplicate-key error, got %v", err)
	}
}

func TestEnsureSchema_EmailUniquenessSkipsBlankEmails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	deps := DBDeps{MongoDatabase: db}
	if err := EnsureSchema(ctx, nil, AppConfig{}, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	users := db.Collection("users")

	// Provider-only accounts carry no email; two of them must coexist.
	for _, uid := range []string{"g1", "g2"} {
		if _, err := users.InsertOne(ctx, bson.M{"_id": uid, "display_name": uid, "email": ""}); err != nil {
			t.Fatalf("insert %s failed: %v", uid, err)
		}
	}

	if _, err := users.InsertOne(ctx, bson.M{"_id": "l1", "display_name": "l1", "email": "dup@test.com"}); err != nil {
		t.Fatalf("insert l1 failed: %v", err)
	}
	_, err := users.InsertOne(ctx, bson.M{"_id": "l2", "display_name": "l2", "email": "dup@test.com"})
	if !wafflemongo.IsDup(err) {
		t.Fatalf("expected duplicate-key error, got %v", err)
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	deps := DBDeps{MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, nil, AppConfig{}, deps, testLogger()); err != nil {
			t.Fatalf("EnsureSchema run %d failed: %v", i+1, err)
		}
	}
}

func TestValidateConfig(t *testing.T) {
	base := AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		StorageType:      "local",
		StorageLocalPath: "./uploads",
	}

	cases := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid local storage", func(c *AppConfig) {}, false},
		{"bad mongo uri", func(c *AppConfig) { c.MongoURI = "not-a-uri" }, true},
		{"unknown storage type", func(c *AppConfig) { c.StorageType = "ftp" }, true},
		{"s3 without bucket", func(c *AppConfig) {
			c.StorageType = "s3"
			c.StorageS3Region = "us-east-1"
		}, true},
		{"s3 with region and bucket", func(c *AppConfig) {
			c.StorageType = "s3"
			c.StorageS3Region = "us-east-1"
			c.StorageS3Bucket = "driftwood-media"
		}, false},
		{"identity url without key", func(c *AppConfig) {
			c.IdentityProviderURL = "https://id.example.com"
		}, true},
		{"google id without secret", func(c *AppConfig) {
			c.GoogleClientID = "client-id"
		}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := ValidateConfig(nil, cfg, testLogger())
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
