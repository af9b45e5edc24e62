// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/driftwoodapp/driftwood/internal/app/features/shared/api"
	userstore "github.com/driftwoodapp/driftwood/internal/app/store/users"
	"github.com/driftwoodapp/driftwood/internal/app/system/auth"
	"github.com/driftwoodapp/driftwood/internal/app/system/objstore"
	"github.com/driftwoodapp/driftwood/internal/app/system/timeouts"
)

// maxImageBytes caps avatar and banner uploads.
const maxImageBytes = 5 << 20

// Handler holds dependencies for the profile endpoints.
type Handler struct {
	DB    *mongo.Database
	Blobs objstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a profile Handler.
func NewHandler(db *mongo.Database, blobs objstore.Store, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Blobs: blobs, Log: logger}
}

// HandleGet handles GET /api/profile.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := userstore.New(h.DB).GetByUID(ctx, u.UID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		api.WriteError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		h.Log.Error("load profile failed", zap.String("uid", u.UID), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to load profile")
		return
	}

	api.WriteJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

// HandleUpdate handles PATCH /api/profile.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req updateProfileRequest
	if !api.Decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		api.WriteError(w, http.StatusBadRequest, "display_name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := userstore.New(h.DB)
	if err := store.UpdateProfile(ctx, u.UID, userstore.ProfileUpdate{
		DisplayName: req.DisplayName,
	}); err != nil {
		h.Log.Error("update profile failed", zap.String("uid", u.UID), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to update profile")
		return
	}

	user, err := store.GetByUID(ctx, u.UID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "unable to load profile")
		return
	}
	api.WriteJSON(w, http.StatusOK, user)
}

// HandleUploadAvatar handles POST /api/profile/avatar.
func (h *Handler) HandleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, "avatars", func(url string) userstore.ProfileUpdate {
		return userstore.ProfileUpdate{AvatarURL: url}
	})
}

// HandleUploadBanner handles POST /api/profile/banner.
func (h *Handler) HandleUploadBanner(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, "banners", func(url string) userstore.ProfileUpdate {
		return userstore.ProfileUpdate{BannerURL: url}
	})
}

// uploadImage stores the multipart "image" file under <kind>/<uid>/ and
// records the object key on the profile. Keys live under the user's tree
// so account deletion can clear them by prefix.
func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request, kind string, update func(string) userstore.ProfileUpdate) {
	u, _ := auth.CurrentUser(r)

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		api.WriteError(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	}

	ext := strings.ToLower(path.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		api.WriteError(w, http.StatusBadRequest, "unsupported image type")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("%s/%s/%s%s", kind, u.UID, uuid.NewString(), ext)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Blobs.Put(ctx, key, file, header.Size, contentType); err != nil {
		h.Log.Error("image upload failed",
			zap.String("uid", u.UID),
			zap.String("key", key),
			zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to store image")
		return
	}

	if err := userstore.New(h.DB).UpdateProfile(ctx, u.UID, update(key)); err != nil {
		h.Log.Error("record image key failed",
			zap.String("uid", u.UID),
			zap.String("key", key),
			zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to update profile")
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]string{"key": key})
}
