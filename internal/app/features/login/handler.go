// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/driftwoodapp/driftwood/internal/app/features/shared/api"
	userstore "github.com/driftwoodapp/driftwood/internal/app/store/users"
	"github.com/driftwoodapp/driftwood/internal/app/system/auth"
	"github.com/driftwoodapp/driftwood/internal/app/system/normalize"
	"github.com/driftwoodapp/driftwood/internal/app/system/timeouts"
	"github.com/driftwoodapp/driftwood/internal/domain/models"
)

const minPasswordLen = 8

// Handler holds dependencies for local password login.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a login Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// HandleLogin handles POST /login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !api.Decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		api.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := userstore.New(h.DB).GetByEmail(ctx, req.Email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		api.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		h.Log.Error("login lookup failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}

	if normalize.Status(user.Status) == "disabled" {
		api.WriteError(w, http.StatusForbidden, "account is disabled")
		return
	}
	if user.PasswordHash == nil {
		api.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		api.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := auth.SignIn(w, r, &auth.SessionUser{
		UID:  user.UID,
		Name: user.DisplayName,
		Role: user.Role,
	}); err != nil {
		h.Log.Error("session save failed", zap.String("uid", user.UID), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to create session")
		return
	}

	_ = userstore.New(h.DB).TouchLastSeen(ctx, user.UID)

	api.WriteJSON(w, http.StatusOK, user)
}

// HandleRegister handles POST /register, creating a local password account.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !api.Decode(w, r, &req) {
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.Email == "" || req.DisplayName == "" {
		api.WriteError(w, http.StatusBadRequest, "email and display_name are required")
		return
	}
	if len(req.Password) < minPasswordLen {
		api.WriteError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("password hash failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to register")
		return
	}
	hashStr := string(hash)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := userstore.New(h.DB)

	if _, err := store.GetByEmail(ctx, req.Email); err == nil {
		api.WriteError(w, http.StatusConflict, "an account with this email already exists")
		return
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		h.Log.Error("register lookup failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to register")
		return
	}

	user, err := store.Create(ctx, models.User{
		UID:          uuid.NewString(),
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		Role:         "member",
		PasswordHash: &hashStr,
	})
	if errors.Is(err, userstore.ErrDuplicateUID) {
		api.WriteError(w, http.StatusConflict, "account already exists")
		return
	}
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := auth.SignIn(w, r, &auth.SessionUser{
		UID:  user.UID,
		Name: user.DisplayName,
		Role: user.Role,
	}); err != nil {
		h.Log.Error("session save failed", zap.String("uid", user.UID), zap.Error(err))
	}

	api.WriteJSON(w, http.StatusCreated, user)
}
