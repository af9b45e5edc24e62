// internal/app/features/friends/routes.go
package friends

import (
	"github.com/go-chi/chi/v5"

	"github.com/driftwoodapp/driftwood/internal/app/system/auth"
)

// Routes returns the friends endpoints. Mounted under /api/friends.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.HandleList)
	r.Post("/requests", h.HandleRequest)
	r.Post("/accept", h.HandleAccept)
	return r
}
