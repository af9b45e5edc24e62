// internal/app/features/groups/routes.go
package groups

import (
	"github.com/go-chi/chi/v5"

	"github.com/driftwoodapp/driftwood/internal/app/system/auth"
)

// Routes returns the group endpoints. Mounted under /api/groups.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleGet)
	r.Post("/{id}/join", h.HandleJoin)
	r.Post("/{id}/leave", h.HandleLeave)

	r.Get("/{id}/posts", h.HandleListPosts)
	r.Post("/{id}/posts", h.HandleCreatePost)
	r.Post("/{id}/posts/{postID}/like", h.HandleLikePost)
	r.Delete("/{id}/posts/{postID}/like", h.HandleUnlikePost)
	r.Post("/{id}/posts/{postID}/comments", h.HandleAddComment)
	r.Post("/{id}/posts/{postID}/comments/{commentID}/replies", h.HandleAddReply)
	return r
}
