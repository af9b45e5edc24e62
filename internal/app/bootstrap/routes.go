// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	accountsfeature "github.com/driftwoodapp/driftwood/internal/app/features/accounts"
	authgooglefeature "github.com/driftwoodapp/driftwood/internal/app/features/authgoogle"
	friendsfeature "github.com/driftwoodapp/driftwood/internal/app/features/friends"
	groupsfeature "github.com/driftwoodapp/driftwood/internal/app/features/groups"
	healthfeature "github.com/driftwoodapp/driftwood/internal/app/features/health"
	loginfeature "github.com/driftwoodapp/driftwood/internal/app/features/login"
	logoutfeature "github.com/driftwoodapp/driftwood/internal/app/features/logout"
	postsfeature "github.com/driftwoodapp/driftwood/internal/app/features/posts"
	profilefeature "github.com/driftwoodapp/driftwood/internal/app/features/profile"
	"github.com/driftwoodapp/driftwood/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Driftwood initializes the session store,
// applies the session-loading middleware, and mounts feature routers for
// authentication, the JSON API, and the identity-provider hook.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Local authentication (POST /login, POST /register)
	loginHandler := loginfeature.NewHandler(db, logger)
	r.Mount("/", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Google sign-in. The handler 404s when no client ID is configured.
	googleHandler := authgooglefeature.NewHandler(db,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret,
		appCfg.BaseURL+"/auth/google/callback", logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// JSON API
	postsHandler := postsfeature.NewHandler(db, logger)
	r.Mount("/api/posts", postsfeature.Routes(postsHandler))

	groupsHandler := groupsfeature.NewHandler(db, logger)
	r.Mount("/api/groups", groupsfeature.Routes(groupsHandler))

	friendsHandler := friendsfeature.NewHandler(db, logger)
	r.Mount("/api/friends", friendsfeature.Routes(friendsHandler))

	profileHandler := profilefeature.NewHandler(db, deps.Blobs, logger)
	r.Mount("/api/profile", profilefeature.Routes(profileHandler))

	// Account deletion: the admin endpoint enforces its own role check,
	// the hook endpoint authenticates with the shared secret.
	accountsHandler := accountsfeature.NewHandler(db, deps.Blobs, deps.Identity, appCfg.HookSecret, logger)
	r.Mount("/api/admin", accountsfeature.AdminRoutes(accountsHandler))
	r.Mount("/hooks/identity", accountsfeature.HookRoutes(accountsHandler))

	return r, nil
}
