package profile_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/driftwoodapp/driftwood/internal/app/features/profile"
	"github.com/driftwoodapp/driftwood/internal/app/system/objstore"
	"github.com/driftwoodapp/driftwood/internal/testutil"
)

func TestHandleUpdate_ChangesDisplayName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	fx.CreateMember(ctx, "a1", "Alice")
	h := profile.NewHandler(db, nil, zap.NewNop())

	req := testutil.NewJSONRequest("PATCH", "/api/profile", `{"display_name":"Alicia"}`)
	req = testutil.WithUser(req, testutil.TestUser{UID: "a1", Name: "Alice", Role: "member"})
	rec := testutil.NewRecorder()
	h.HandleUpdate(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Alicia")

	if n, _ := db.Collection("users").CountDocuments(ctx,
		bson.M{"_id": "a1", "display_name": "Alicia"}); n != 1 {
		t.Errorf("display name not persisted")
	}
}

func TestHandleUploadAvatar_StoresUnderUserTree(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	fx.CreateMember(ctx, "a1", "Alice")

	blobs, err := objstore.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	h := profile.NewHandler(db, blobs, zap.NewNop())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "me.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write([]byte("not really a png")); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/api/profile/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = testutil.WithUser(req, testutil.TestUser{UID: "a1", Name: "Alice", Role: "member"})
	rec := testutil.NewRecorder()
	h.HandleUploadAvatar(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	if !strings.Contains(rec.Body.String(), `"key":"avatars/a1/`) {
		t.Errorf("key not under user tree: %s", rec.Body.String())
	}

	var u struct {
		AvatarURL string `bson:"avatar_url"`
	}
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": "a1"}).Decode(&u); err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if !strings.HasPrefix(u.AvatarURL, "avatars/a1/") {
		t.Errorf("avatar url: got %q, want avatars/a1/ prefix", u.AvatarURL)
	}
}

func TestHandleUploadAvatar_RejectsUnknownType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	blobs, err := objstore.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	h := profile.NewHandler(db, blobs, zap.NewNop())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("image", "nope.exe")
	fw.Write([]byte("binary"))
	mw.Close()

	req := httptest.NewRequest("POST", "/api/profile/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = testutil.WithUser(req, testutil.MemberUser())
	rec := testutil.NewRecorder()
	h.HandleUploadAvatar(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}
