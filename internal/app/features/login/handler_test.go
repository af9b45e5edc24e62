package login_test

import (
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/driftwoodapp/driftwood/internal/app/features/login"
	"github.com/driftwoodapp/driftwood/internal/app/system/auth"
	"github.com/driftwoodapp/driftwood/internal/testutil"
)

func initSessions(t *testing.T) {
	t.Helper()
	if err := auth.InitSessionStore("0123456789abcdef0123456789abcdef", "", false, zap.NewNop()); err != nil {
		t.Fatalf("InitSessionStore: %v", err)
	}
}

func TestRegisterThenLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	initSessions(t)
	h := login.NewHandler(db, zap.NewNop())

	reg := testutil.NewJSONRequest("POST", "/register",
		`{"email":"Alice@Example.com","password":"hunter2hunter2","display_name":"Alice"}`)
	rec := testutil.NewRecorder()
	h.HandleRegister(rec, reg)
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "alice@example.com")

	// Email lookup is case-insensitive.
	good := testutil.NewJSONRequest("POST", "/login",
		`{"email":"ALICE@example.com","password":"hunter2hunter2"}`)
	rec = testutil.NewRecorder()
	h.HandleLogin(rec, good)
	rec.AssertStatus(t, http.StatusOK)

	bad := testutil.NewJSONRequest("POST", "/login",
		`{"email":"alice@example.com","password":"wrong-password"}`)
	rec = testutil.NewRecorder()
	h.HandleLogin(rec, bad)
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestRegister_RejectsDuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	initSessions(t)
	h := login.NewHandler(db, zap.NewNop())

	first := testutil.NewJSONRequest("POST", "/register",
		`{"email":"bob@example.com","password":"hunter2hunter2","display_name":"Bob"}`)
	rec := testutil.NewRecorder()
	h.HandleRegister(rec, first)
	rec.AssertStatus(t, http.StatusCreated)

	second := testutil.NewJSONRequest("POST", "/register",
		`{"email":"bob@example.com","password":"hunter2hunter2","display_name":"Bobby"}`)
	rec = testutil.NewRecorder()
	h.HandleRegister(rec, second)
	rec.AssertStatus(t, http.StatusConflict)
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	initSessions(t)
	h := login.NewHandler(db, zap.NewNop())

	req := testutil.NewJSONRequest("POST", "/register",
		`{"email":"c@example.com","password":"short","display_name":"C"}`)
	rec := testutil.NewRecorder()
	h.HandleRegister(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestLogin_UnknownEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	initSessions(t)
	h := login.NewHandler(db, zap.NewNop())

	req := testutil.NewJSONRequest("POST", "/login",
		`{"email":"ghost@example.com","password":"whatever1"}`)
	rec := testutil.NewRecorder()
	h.HandleLogin(rec, req)
	rec.AssertStatus(t, http.StatusUnauthorized)
}
