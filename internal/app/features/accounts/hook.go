// internal/app/features/accounts/hook.go
package accounts

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/driftwoodapp/driftwood/internal/app/cascade"
	"github.com/driftwoodapp/driftwood/internal/app/system/timeouts"
)

// HookSecretHeader carries the shared secret the identity provider is
// configured to send with deletion notifications.
const HookSecretHeader = "X-Hook-Secret"

type hookRequest struct {
	UID string `json:"uid"`
}

// HandleUserDeletedHook handles POST /hooks/identity/user-deleted.
//
// The identity provider calls this after it has already removed the
// account, so there is nobody to report failures to: once the secret
// checks out the response is always 204 and problems are only logged.
// Provider retries land on an empty cascade, which is harmless.
func (h *Handler) HandleUserDeletedHook(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get(HookSecretHeader)
	if h.HookSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.HookSecret)) != 1 {
		writeError(w, http.StatusUnauthorized, codeUnauthenticated, "bad hook secret")
		return
	}

	var req hookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Log.Warn("deletion hook: unreadable body", zap.Error(err))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	req.UID = strings.TrimSpace(req.UID)
	if req.UID == "" {
		h.Log.Warn("deletion hook: missing uid")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// Detached from the request context: a started cascade runs to
	// completion even if the provider gives up on the request.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Cascade())
	defer cancel()

	result := cascade.NewExecutor(h.DB, h.Blobs, h.Log).Run(ctx, req.UID)

	h.Log.Info("deletion hook cascade finished",
		zap.String("uid", req.UID),
		zap.Int("total", result.Total()))

	w.WriteHeader(http.StatusNoContent)
}
