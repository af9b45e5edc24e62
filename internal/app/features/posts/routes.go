// internal/app/features/posts/routes.go
package posts

import (
	"github.com/go-chi/chi/v5"

	"github.com/driftwoodapp/driftwood/internal/app/system/auth"
)

// Routes returns the feed post endpoints. Mounted under /api/posts.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Post("/{id}/like", h.HandleLike)
	r.Delete("/{id}/like", h.HandleUnlike)
	r.Post("/{id}/comments", h.HandleAddComment)
	r.Post("/{id}/comments/{commentID}/replies", h.HandleAddReply)
	return r
}
