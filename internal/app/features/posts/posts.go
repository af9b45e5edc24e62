// internal/app/features/posts/posts.go
package posts

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/driftwoodapp/driftwood/internal/app/features/shared/api"
	poststore "github.com/driftwoodapp/driftwood/internal/app/store/posts"
	"github.com/driftwoodapp/driftwood/internal/app/system/auth"
	"github.com/driftwoodapp/driftwood/internal/app/system/htmlsanitize"
	"github.com/driftwoodapp/driftwood/internal/app/system/timeouts"
	"github.com/driftwoodapp/driftwood/internal/domain/models"
)

const feedLimit = 50

type createPostRequest struct {
	Body string `json:"body"`
}

type bodyRequest struct {
	Body string `json:"body"`
}

// HandleCreate handles POST /api/posts.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req createPostRequest
	if !api.Decode(w, r, &req) {
		return
	}
	body := strings.TrimSpace(htmlsanitize.Sanitize(req.Body))
	if body == "" {
		api.WriteError(w, http.StatusBadRequest, "post body is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	post, err := poststore.New(h.DB).Create(ctx, models.Post{
		UID:        u.UID,
		AuthorName: u.Name,
		Body:       body,
		Likes:      []string{},
		Comments:   []models.InlineComment{},
	})
	if err != nil {
		h.Log.Error("create post failed", zap.String("uid", u.UID), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to create post")
		return
	}

	api.WriteJSON(w, http.StatusCreated, post)
}

// HandleList handles GET /api/posts.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := poststore.New(h.DB).ListRecent(ctx, feedLimit)
	if err != nil {
		h.Log.Error("list posts failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to load posts")
		return
	}
	if list == nil {
		list = []models.Post{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"posts": list})
}

// HandleLike handles POST /api/posts/{id}/like.
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, true)
}

// HandleUnlike handles DELETE /api/posts/{id}/like.
func (h *Handler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, false)
}

func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request, add bool) {
	u, _ := auth.CurrentUser(r)

	postID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := poststore.New(h.DB)
	var changed bool
	if add {
		changed, err = store.AddLike(ctx, postID, u.UID)
	} else {
		changed, err = store.RemoveLike(ctx, postID, u.UID)
	}
	if err != nil {
		h.Log.Error("toggle like failed",
			zap.String("post_id", postID.Hex()),
			zap.Bool("add", add),
			zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to update like")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

// HandleAddComment handles POST /api/posts/{id}/comments.
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	postID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req bodyRequest
	if !api.Decode(w, r, &req) {
		return
	}
	body := strings.TrimSpace(htmlsanitize.Sanitize(req.Body))
	if body == "" {
		api.WriteError(w, http.StatusBadRequest, "comment body is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	commentID, err := poststore.New(h.DB).AddInlineComment(ctx, postID, u.UID, u.Name, body)
	if err != nil {
		h.Log.Error("add comment failed",
			zap.String("post_id", postID.Hex()),
			zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to add comment")
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]string{"id": commentID})
}

// HandleAddReply handles POST /api/posts/{id}/comments/{commentID}/replies.
func (h *Handler) HandleAddReply(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	postID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	commentID := chi.URLParam(r, "commentID")

	var req bodyRequest
	if !api.Decode(w, r, &req) {
		return
	}
	body := strings.TrimSpace(htmlsanitize.Sanitize(req.Body))
	if body == "" {
		api.WriteError(w, http.StatusBadRequest, "reply body is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	replyID, err := poststore.New(h.DB).AddInlineReply(ctx, postID, commentID, u.UID, u.Name, body)
	if err == mongo.ErrNoDocuments {
		api.WriteError(w, http.StatusNotFound, "comment not found")
		return
	}
	if err != nil {
		h.Log.Error("add reply failed",
			zap.String("post_id", postID.Hex()),
			zap.String("comment_id", commentID),
			zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to add reply")
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]string{"id": replyID})
}
