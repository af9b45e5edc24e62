package accounts_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/driftwoodapp/driftwood/internal/app/features/accounts"
	"github.com/driftwoodapp/driftwood/internal/app/system/identity"
	"github.com/driftwoodapp/driftwood/internal/testutil"
)

// fakeProvider records DeleteAccount calls and returns a canned error.
type fakeProvider struct {
	deleted []string
	err     error
}

func (f *fakeProvider) DeleteAccount(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return f.err
}

func TestAdminDelete_RequiresAuth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := accounts.NewHandler(db, nil, &fakeProvider{}, "s3cret", zap.NewNop())

	req := testutil.NewJSONRequest("POST", "/api/admin/delete-user", `{"uid":"a1"}`)
	rec := testutil.NewRecorder()
	h.HandleAdminDelete(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, "unauthenticated")
}

func TestAdminDelete_RejectsNonAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	target := fx.CreateMember(ctx, "a1", "Alice")
	fx.CreatePost(ctx, target.UID, target.DisplayName, "alice's post")

	provider := &fakeProvider{}
	h := accounts.NewHandler(db, nil, provider, "s3cret", zap.NewNop())

	req := testutil.NewJSONRequest("POST", "/api/admin/delete-user", `{"uid":"a1"}`)
	req = testutil.WithUser(req, testutil.MemberUser())
	rec := testutil.NewRecorder()
	h.HandleAdminDelete(rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertContains(t, "permission-denied")

	// Nothing was touched.
	if len(provider.deleted) != 0 {
		t.Errorf("identity provider called by non-admin: %v", provider.deleted)
	}
	if n, _ := db.Collection("users").CountDocuments(ctx, bson.M{"_id": "a1"}); n != 1 {
		t.Errorf("target profile mutated by denied request")
	}
	if n, _ := db.Collection("posts").CountDocuments(ctx, bson.M{"uid": "a1"}); n != 1 {
		t.Errorf("target posts mutated by denied request")
	}
}

func TestAdminDelete_HappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	target := fx.CreateMember(ctx, "a1", "Alice")
	fx.CreatePost(ctx, target.UID, target.DisplayName, "alice's post")

	provider := &fakeProvider{}
	h := accounts.NewHandler(db, nil, provider, "s3cret", zap.NewNop())

	req := testutil.NewJSONRequest("POST", "/api/admin/delete-user", `{"uid":"a1"}`)
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.HandleAdminDelete(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"deleted_posts":1`)
	rec.AssertContains(t, `"deleted_profiles":1`)

	if len(provider.deleted) != 1 || provider.deleted[0] != "a1" {
		t.Errorf("identity deletions: got %v, want [a1]", provider.deleted)
	}
	if n, _ := db.Collection("users").CountDocuments(ctx, bson.M{"_id": "a1"}); n != 0 {
		t.Errorf("target profile still present")
	}
}

func TestAdminDelete_ProfileRoleFallback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	// The session predates the role grant: it says member, but the stored
	// profile says admin.
	actor := fx.CreateAdmin(ctx, "admin1", "Root")
	fx.CreateMember(ctx, "a1", "Alice")

	h := accounts.NewHandler(db, nil, &fakeProvider{}, "s3cret", zap.NewNop())

	req := testutil.NewJSONRequest("POST", "/api/admin/delete-user", `{"uid":"a1"}`)
	req = testutil.WithUser(req, testutil.TestUser{UID: actor.UID, Name: actor.DisplayName, Role: "member"})
	rec := testutil.NewRecorder()
	h.HandleAdminDelete(rec, req)

	rec.AssertStatus(t, http.StatusOK)
}

func TestAdminDelete_BadInput(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := accounts.NewHandler(db, nil, &fakeProvider{}, "s3cret", zap.NewNop())
	admin := testutil.AdminUser()

	cases := []struct {
		name string
		body string
	}{
		{"not json", `{{`},
		{"missing uid", `{}`},
		{"blank uid", `{"uid":"   "}`},
		{"self delete", `{"uid":"` + admin.UID + `"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewJSONRequest("POST", "/api/admin/delete-user", tc.body)
			req = testutil.WithUser(req, admin)
			rec := testutil.NewRecorder()
			h.HandleAdminDelete(rec, req)

			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertContains(t, "invalid-argument")
		})
	}
}

func TestAdminDelete_IdentityFailureAfterCleanup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	fx.CreateMember(ctx, "a1", "Alice")

	provider := &fakeProvider{err: errors.New("provider down")}
	h := accounts.NewHandler(db, nil, provider, "s3cret", zap.NewNop())

	req := testutil.NewJSONRequest("POST", "/api/admin/delete-user", `{"uid":"a1"}`)
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.HandleAdminDelete(rec, req)

	rec.AssertStatus(t, http.StatusInternalServerError)
	rec.AssertContains(t, "internal")

	// The cleanup is not rolled back; only the provider call failed and
	// the whole request can be retried.
	if n, _ := db.Collection("users").CountDocuments(ctx, bson.M{"_id": "a1"}); n != 0 {
		t.Errorf("profile still present after identity failure")
	}
}

func TestAdminDelete_ToleratesMissingIdentityAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	fx.CreateMember(ctx, "a1", "Alice")

	provider := &fakeProvider{err: identity.ErrNotFound}
	h := accounts.NewHandler(db, nil, provider, "s3cret", zap.NewNop())

	req := testutil.NewJSONRequest("POST", "/api/admin/delete-user", `{"uid":"a1"}`)
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.HandleAdminDelete(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if n, _ := db.Collection("users").CountDocuments(ctx, bson.M{"_id": "a1"}); n != 0 {
		t.Errorf("profile still present after cascade")
	}
}

func TestHook_RejectsBadSecret(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	fx.CreateMember(ctx, "a1", "Alice")

	h := accounts.NewHandler(db, nil, identity.Disabled{}, "s3cret", zap.NewNop())

	req := testutil.NewJSONRequest("POST", "/hooks/identity/user-deleted", `{"uid":"a1"}`)
	req.Header.Set(accounts.HookSecretHeader, "wrong")
	rec := testutil.NewRecorder()
	h.HandleUserDeletedHook(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
	if n, _ := db.Collection("users").CountDocuments(ctx, bson.M{"_id": "a1"}); n != 1 {
		t.Errorf("profile mutated by unauthenticated hook")
	}
}

func TestHook_RunsCascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	target := fx.CreateMember(ctx, "a1", "Alice")
	fx.CreatePost(ctx, target.UID, target.DisplayName, "alice's post")

	h := accounts.NewHandler(db, nil, identity.Disabled{}, "s3cret", zap.NewNop())

	req := testutil.NewJSONRequest("POST", "/hooks/identity/user-deleted", `{"uid":"a1"}`)
	req.Header.Set(accounts.HookSecretHeader, "s3cret")
	rec := testutil.NewRecorder()
	h.HandleUserDeletedHook(rec, req)

	rec.AssertStatus(t, http.StatusNoContent)
	if n, _ := db.Collection("users").CountDocuments(ctx, bson.M{"_id": "a1"}); n != 0 {
		t.Errorf("profile still present after hook cascade")
	}
	if n, _ := db.Collection("posts").CountDocuments(ctx, bson.M{"uid": "a1"}); n != 0 {
		t.Errorf("posts still present after hook cascade")
	}
}

func TestHook_BadBodyStillAccepted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := accounts.NewHandler(db, nil, identity.Disabled{}, "s3cret", zap.NewNop())

	for _, body := range []string{`{{`, `{}`, `{"uid":""}`} {
		req := testutil.NewJSONRequest("POST", "/hooks/identity/user-deleted", body)
		req.Header.Set(accounts.HookSecretHeader, "s3cret")
		rec := testutil.NewRecorder()
		h.HandleUserDeletedHook(rec, req)
		rec.AssertStatus(t, http.StatusNoContent)
	}
}
