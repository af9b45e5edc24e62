// internal/app/features/friends/handler.go
package friends

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/driftwoodapp/driftwood/internal/app/features/shared/api"
	friendstore "github.com/driftwoodapp/driftwood/internal/app/store/friends"
	"github.com/driftwoodapp/driftwood/internal/app/system/auth"
	"github.com/driftwoodapp/driftwood/internal/app/system/timeouts"
)

// Handler holds dependencies for the friends endpoints.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a friends Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

type uidRequest struct {
	UID string `json:"uid"`
}

// HandleRequest handles POST /api/friends/requests.
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req uidRequest
	if !api.Decode(w, r, &req) {
		return
	}
	req.UID = strings.TrimSpace(req.UID)
	if req.UID == "" {
		api.WriteError(w, http.StatusBadRequest, "uid is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := friendstore.New(h.DB).Request(ctx, u.UID, req.UID)
	if errors.Is(err, friendstore.ErrDuplicateRequest) {
		api.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		// Self-friending and similar validation errors land here too.
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	api.WriteJSON(w, http.StatusCreated, created)
}

// HandleAccept handles POST /api/friends/accept. The caller accepts the
// pending request from the given user.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req uidRequest
	if !api.Decode(w, r, &req) {
		return
	}
	req.UID = strings.TrimSpace(req.UID)
	if req.UID == "" {
		api.WriteError(w, http.StatusBadRequest, "uid is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := friendstore.New(h.DB).Accept(ctx, req.UID, u.UID)
	if errors.Is(err, friendstore.ErrRequestNotFound) {
		api.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.Log.Error("accept friend request failed",
			zap.String("uid", u.UID),
			zap.String("from", req.UID),
			zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to accept request")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleList handles GET /api/friends.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	uids, err := friendstore.New(h.DB).ListFriends(ctx, u.UID)
	if err != nil {
		h.Log.Error("list friends failed", zap.String("uid", u.UID), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to load friends")
		return
	}
	if uids == nil {
		uids = []string{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"friends": uids})
}
