// internal/app/features/groups/groupposts.go
package groups

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/driftwoodapp/driftwood/internal/app/features/shared/api"
	commentstore "github.com/driftwoodapp/driftwood/internal/app/store/groupcomments"
	memberstore "github.com/driftwoodapp/driftwood/internal/app/store/groupmembers"
	grouppoststore "github.com/driftwoodapp/driftwood/internal/app/store/groupposts"
	replystore "github.com/driftwoodapp/driftwood/internal/app/store/groupreplies"
	"github.com/driftwoodapp/driftwood/internal/app/system/auth"
	"github.com/driftwoodapp/driftwood/internal/app/system/htmlsanitize"
	"github.com/driftwoodapp/driftwood/internal/app/system/timeouts"
	"github.com/driftwoodapp/driftwood/internal/domain/models"
)

const groupFeedLimit = 50

type postBodyRequest struct {
	Body string `json:"body"`
}

type replyBodyRequest struct {
	Body          string `json:"body"`
	ParentReplyID string `json:"parent_reply_id,omitempty"`
}

// requireMember loads the group id from the URL and verifies the caller
// belongs to the group. A false return means the response is written.
func (h *Handler) requireMember(w http.ResponseWriter, r *http.Request, uid string) (primitive.ObjectID, bool) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid group id")
		return primitive.NilObjectID, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ok, err := memberstore.New(h.DB).Exists(ctx, groupID, uid)
	if err != nil {
		h.Log.Error("membership check failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("uid", uid),
			zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to check membership")
		return primitive.NilObjectID, false
	}
	if !ok {
		api.WriteError(w, http.StatusForbidden, "join the group to participate")
		return primitive.NilObjectID, false
	}
	return groupID, true
}

// HandleCreatePost handles POST /api/groups/{id}/posts.
func (h *Handler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	groupID, ok := h.requireMember(w, r, u.UID)
	if !ok {
		return
	}

	var req postBodyRequest
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

	post, err := grouppoststore.New(h.DB).Create(ctx, models.GroupPost{
		GroupID:    groupID,
		UID:        u.UID,
		AuthorName: u.Name,
		Body:       body,
		Likes:      []string{},
		Comments:   []models.InlineComment{},
	})
	if err != nil {
		h.Log.Error("create group post failed",
			zap.String("group_id", groupID.Hex()),
			zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to create post")
		return
	}

	api.WriteJSON(w, http.StatusCreated, post)
}

// HandleListPosts handles GET /api/groups/{id}/posts.
func (h *Handler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	groupID, ok := h.requireMember(w, r, u.UID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := grouppoststore.New(h.DB).ListByGroup(ctx, groupID, groupFeedLimit)
	if err != nil {
		h.Log.Error("list group posts failed",
			zap.String("group_id", groupID.Hex()),
			zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to load posts")
		return
	}
	if list == nil {
		list = []models.GroupPost{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"posts": list})
}

// HandleLikePost handles POST /api/groups/{id}/posts/{postID}/like.
func (h *Handler) HandleLikePost(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, true)
}

// HandleUnlikePost handles DELETE /api/groups/{id}/posts/{postID}/like.
func (h *Handler) HandleUnlikePost(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, false)
}

func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request, add bool) {
	u, _ := auth.CurrentUser(r)
	if _, ok := h.requireMember(w, r, u.UID); !ok {
		return
	}

	postID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "postID"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := grouppoststore.New(h.DB)
	var changed bool
	if add {
		changed, err = store.AddLike(ctx, postID, u.UID)
	} else {
		changed, err = store.RemoveLike(ctx, postID, u.UID)
	}
	if err != nil {
		h.Log.Error("toggle group post like failed",
			zap.String("post_id", postID.Hex()),
			zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to update like")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

// HandleAddComment handles POST /api/groups/{id}/posts/{postID}/comments.
// Group comments are standalone documents, not embedded in the post.
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	if _, ok := h.requireMember(w, r, u.UID); !ok {
		return
	}

	postID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "postID"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req postBodyRequest
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

	if _, err := grouppoststore.New(h.DB).GetByID(ctx, postID); err == mongo.ErrNoDocuments {
		api.WriteError(w, http.StatusNotFound, "post not found")
		return
	} else if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "unable to add comment")
		return
	}

	comment, err := commentstore.New(h.DB).Create(ctx, models.GroupComment{
		PostID:     postID,
		UID:        u.UID,
		AuthorName: u.Name,
		Body:       body,
	})
	if err != nil {
		h.Log.Error("create group comment failed",
			zap.String("post_id", postID.Hex()),
			zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to add comment")
		return
	}

	api.WriteJSON(w, http.StatusCreated, comment)
}

// HandleAddReply handles
// POST /api/groups/{id}/posts/{postID}/comments/{commentID}/replies.
// A parent_reply_id in the body nests the reply under another reply; either
// way the stored document carries the root comment id.
func (h *Handler) HandleAddReply(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	if _, ok := h.requireMember(w, r, u.UID); !ok {
		return
	}

	commentID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "commentID"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	var req replyBodyRequest
	if !api.Decode(w, r, &req) {
		return
	}
	body := strings.TrimSpace(htmlsanitize.Sanitize(req.Body))
	if body == "" {
		api.WriteError(w, http.StatusBadRequest, "reply body is required")
		return
	}

	var parent *primitive.ObjectID
	if req.ParentReplyID != "" {
		pid, err := primitive.ObjectIDFromHex(req.ParentReplyID)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid parent reply id")
			return
		}
		parent = &pid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	reply, err := replystore.New(h.DB).Create(ctx, models.GroupReply{
		CommentID:     commentID,
		ParentReplyID: parent,
		UID:           u.UID,
		AuthorName:    u.Name,
		Body:          body,
	})
	if err != nil {
		h.Log.Error("create group reply failed",
			zap.String("comment_id", commentID.Hex()),
			zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to add reply")
		return
	}

	api.WriteJSON(w, http.StatusCreated, reply)
}
