// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/driftwoodapp/driftwood/internal/app/system/timeouts"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Cascade: appCfg.CascadeTimeout})

	logger.Info("driftwood starting",
		zap.String("env", coreCfg.Env),
		zap.String("storage", appCfg.StorageType),
		zap.Bool("identity_provider", appCfg.IdentityProviderURL != ""),
		zap.Bool("google_signin", appCfg.GoogleClientID != ""))
	return nil
}
