// internal/app/features/profile/routes.go
package profile

import (
	"github.com/go-chi/chi/v5"

	"github.com/driftwoodapp/driftwood/internal/app/system/auth"
)

// Routes returns the profile endpoints. Mounted under /api/profile.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.HandleGet)
	r.Patch("/", h.HandleUpdate)
	r.Post("/avatar", h.HandleUploadAvatar)
	r.Post("/banner", h.HandleUploadBanner)
	return r
}
