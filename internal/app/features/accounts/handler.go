// internal/app/features/accounts/handler.go
package accounts

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/driftwoodapp/driftwood/internal/app/system/identity"
	"github.com/driftwoodapp/driftwood/internal/app/system/objstore"
)

// Handler holds the dependencies for the account-deletion endpoints.
type Handler struct {
	DB         *mongo.Database
	Blobs      objstore.Store
	Identity   identity.Provider
	HookSecret string
	Log        *zap.Logger
}

// NewHandler constructs an accounts Handler.
func NewHandler(db *mongo.Database, blobs objstore.Store, provider identity.Provider, hookSecret string, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Blobs:      blobs,
		Identity:   provider,
		HookSecret: hookSecret,
		Log:        logger,
	}
}

// Error codes returned by the deletion endpoints.
const (
	codeUnauthenticated  = "unauthenticated"
	codePermissionDenied = "permission-denied"
	codeInvalidArgument  = "invalid-argument"
	codeInternal         = "internal"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
