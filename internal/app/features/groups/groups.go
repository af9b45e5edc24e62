// internal/app/features/groups/groups.go
package groups

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/driftwoodapp/driftwood/internal/app/features/shared/api"
	groupstore "github.com/driftwoodapp/driftwood/internal/app/store/groups"
	memberstore "github.com/driftwoodapp/driftwood/internal/app/store/groupmembers"
	"github.com/driftwoodapp/driftwood/internal/app/system/auth"
	"github.com/driftwoodapp/driftwood/internal/app/system/htmlsanitize"
	"github.com/driftwoodapp/driftwood/internal/app/system/timeouts"
	"github.com/driftwoodapp/driftwood/internal/domain/models"
)

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreate handles POST /api/groups. The creator gets a "creator"
// membership record and is seeded into the legacy inline members array.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req createGroupRequest
	if !api.Decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		api.WriteError(w, http.StatusBadRequest, "group name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	group, err := groupstore.New(h.DB).Create(ctx, models.Group{
		Name:        req.Name,
		Description: htmlsanitize.Sanitize(req.Description),
		OwnerUID:    u.UID,
		Members:     []string{u.UID},
	})
	if errors.Is(err, groupstore.ErrDuplicateGroupName) {
		api.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.Log.Error("create group failed", zap.String("uid", u.UID), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to create group")
		return
	}

	if err := memberstore.New(h.DB).Add(ctx, group.ID, u.UID, "creator"); err != nil {
		h.Log.Error("seed creator membership failed",
			zap.String("group_id", group.ID.Hex()),
			zap.Error(err))
	}

	api.WriteJSON(w, http.StatusCreated, group)
}

// HandleGet handles GET /api/groups/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	group, err := groupstore.New(h.DB).GetByID(ctx, groupID)
	if err == mongo.ErrNoDocuments {
		api.WriteError(w, http.StatusNotFound, "group not found")
		return
	}
	if err != nil {
		h.Log.Error("load group failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to load group")
		return
	}

	members, err := memberstore.New(h.DB).ListByGroup(ctx, groupID, "")
	if err != nil {
		h.Log.Error("list members failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to load group")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"group":   group,
		"members": members,
	})
}

// HandleJoin handles POST /api/groups/{id}/join. Membership is written to
// both representations: the group_members record and the legacy inline
// members array on the group document.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	gStore := groupstore.New(h.DB)
	if _, err := gStore.GetByID(ctx, groupID); err == mongo.ErrNoDocuments {
		api.WriteError(w, http.StatusNotFound, "group not found")
		return
	} else if err != nil {
		h.Log.Error("load group failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to join group")
		return
	}

	err = memberstore.New(h.DB).Add(ctx, groupID, u.UID, "member")
	if errors.Is(err, memberstore.ErrDuplicateMembership) {
		api.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.Log.Error("join group failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("uid", u.UID),
			zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to join group")
		return
	}

	if err := gStore.AddLegacyMember(ctx, groupID, u.UID); err != nil {
		h.Log.Warn("inline members array update failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("uid", u.UID),
			zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleLeave handles POST /api/groups/{id}/leave, removing the user from
// both membership representations.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := memberstore.New(h.DB).Remove(ctx, groupID, u.UID); err != nil {
		h.Log.Error("leave group failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("uid", u.UID),
			zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to leave group")
		return
	}
	if err := groupstore.New(h.DB).RemoveLegacyMember(ctx, groupID, u.UID); err != nil {
		h.Log.Warn("inline members array update failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("uid", u.UID),
			zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}
