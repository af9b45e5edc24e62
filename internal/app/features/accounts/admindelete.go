// internal/app/features/accounts/admindelete.go
package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/driftwoodapp/driftwood/internal/app/cascade"
	userstore "github.com/driftwoodapp/driftwood/internal/app/store/users"
	"github.com/driftwoodapp/driftwood/internal/app/system/auth"
	"github.com/driftwoodapp/driftwood/internal/app/system/authz"
	"github.com/driftwoodapp/driftwood/internal/app/system/identity"
	"github.com/driftwoodapp/driftwood/internal/app/system/timeouts"
)

type adminDeleteRequest struct {
	UID string `json:"uid"`
}

type adminDeleteResponse struct {
	OK     bool           `json:"ok"`
	UID    string         `json:"uid"`
	Result cascade.Result `json:"result"`
}

// HandleAdminDelete handles POST /api/admin/delete-user.
//
// The caller must be signed in as an admin. The session role is checked
// first; if the session predates a role grant, the stored profile's role
// is consulted before denying. On success the full data cascade runs, the
// identity-provider account is removed, and the per-category counters are
// returned.
func (h *Handler) HandleAdminDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthenticated, "sign in required")
		return
	}

	// Detached from the request context: a started cascade runs to
	// completion even if the admin's client disconnects.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Cascade())
	defer cancel()

	if !h.callerIsAdmin(ctx, r, caller) {
		writeError(w, http.StatusForbidden, codePermissionDenied, "admin role required")
		return
	}

	var req adminDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid JSON body")
		return
	}
	req.UID = strings.TrimSpace(req.UID)
	if req.UID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "uid is required")
		return
	}
	if req.UID == caller.UID {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "use account settings to delete your own account")
		return
	}

	result := cascade.NewExecutor(h.DB, h.Blobs, h.Log).Run(ctx, req.UID)

	// The data cleanup is not rolled back on a provider failure; the
	// cascade is idempotent and the call can simply be retried.
	if err := h.Identity.DeleteAccount(ctx, req.UID); err != nil && !errors.Is(err, identity.ErrNotFound) {
		h.Log.Error("identity account deletion failed",
			zap.String("uid", req.UID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "account deletion failed")
		return
	}

	h.Log.Info("admin deleted user",
		zap.String("actor_uid", caller.UID),
		zap.String("uid", req.UID),
		zap.Int("total", result.Total()))

	writeJSON(w, http.StatusOK, adminDeleteResponse{OK: true, UID: req.UID, Result: result})
}

// callerIsAdmin accepts the session role or, failing that, the role on the
// caller's stored profile.
func (h *Handler) callerIsAdmin(ctx context.Context, r *http.Request, caller *auth.SessionUser) bool {
	if authz.IsAdmin(r) {
		return true
	}
	u, err := userstore.New(h.DB).GetIfExists(ctx, caller.UID)
	if err != nil || u == nil {
		return false
	}
	return u.IsAdmin()
}
