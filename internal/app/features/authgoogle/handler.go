// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/driftwoodapp/driftwood/internal/app/features/shared/api"
	userstore "github.com/driftwoodapp/driftwood/internal/app/store/users"
	"github.com/driftwoodapp/driftwood/internal/app/system/auth"
	"github.com/driftwoodapp/driftwood/internal/app/system/timeouts"
	"github.com/driftwoodapp/driftwood/internal/domain/models"
)

const (
	stateCookie = "oauth_state"
	userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Handler implements Google sign-in. The Google subject id becomes the
// profile UID, so a returning user always lands on the same document.
type Handler struct {
	DB    *mongo.Database
	OAuth *oauth2.Config
	Log   *zap.Logger

	rest *resty.Client
}

// NewHandler constructs the Google auth Handler. clientID may be empty,
// in which case Enabled reports false and the routes 404.
func NewHandler(db *mongo.Database, clientID, clientSecret, redirectURL string, logger *zap.Logger) *Handler {
	return &Handler{
		DB: db,
		OAuth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		Log:  logger,
		rest: resty.New().SetTimeout(timeouts.Short()),
	}
}

// Enabled reports whether Google sign-in is configured.
func (h *Handler) Enabled() bool { return h.OAuth.ClientID != "" }

// HandleStart handles GET /auth/google.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if !h.Enabled() {
		http.NotFound(w, r)
		return
	}

	state, err := randomState()
	if err != nil {
		h.Log.Error("generating oauth state failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to start sign-in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.OAuth.AuthCodeURL(state), http.StatusSeeOther)
}

// googleUser is the subset of the userinfo response we use.
type googleUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleCallback handles GET /auth/google/callback.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if !h.Enabled() {
		http.NotFound(w, r)
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		api.WriteError(w, http.StatusBadRequest, "state mismatch")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		api.WriteError(w, http.StatusBadRequest, "missing code")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	token, err := h.OAuth.Exchange(ctx, code)
	if err != nil {
		h.Log.Warn("oauth code exchange failed", zap.Error(err))
		api.WriteError(w, http.StatusBadGateway, "sign-in failed")
		return
	}

	gu, err := h.fetchUserinfo(ctx, token.AccessToken)
	if err != nil {
		h.Log.Warn("userinfo fetch failed", zap.Error(err))
		api.WriteError(w, http.StatusBadGateway, "sign-in failed")
		return
	}
	if gu.ID == "" {
		api.WriteError(w, http.StatusBadGateway, "sign-in failed")
		return
	}

	user, err := h.upsertUser(ctx, gu)
	if err != nil {
		h.Log.Error("upserting google user failed",
			zap.String("uid", gu.ID),
			zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "sign-in failed")
		return
	}

	if err := auth.SignIn(w, r, &auth.SessionUser{
		UID:  user.UID,
		Name: user.DisplayName,
		Role: user.Role,
	}); err != nil {
		h.Log.Error("session save failed", zap.String("uid", user.UID), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "unable to create session")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) fetchUserinfo(ctx context.Context, accessToken string) (googleUser, error) {
	var gu googleUser
	resp, err := h.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&gu).
		Get(userinfoURL)
	if err != nil {
		return googleUser{}, err
	}
	if resp.IsError() {
		return googleUser{}, errors.New("userinfo request failed: " + resp.Status())
	}
	return gu, nil
}

// upsertUser loads the profile for the Google subject id, creating it on
// first sign-in.
func (h *Handler) upsertUser(ctx context.Context, gu googleUser) (*models.User, error) {
	store := userstore.New(h.DB)

	user, err := store.GetIfExists(ctx, gu.ID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		_ = store.TouchLastSeen(ctx, user.UID)
		return user, nil
	}

	name := gu.Name
	if name == "" {
		name = gu.Email
	}
	created, err := store.Create(ctx, models.User{
		UID:         gu.ID,
		DisplayName: name,
		Email:       gu.Email,
		Role:        "member",
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
