// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, timeouts); AppConfig is everything specific to Driftwood.
// The struct is passed to most lifecycle hooks, so any configuration
// needed during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionDomain string // Cookie domain (blank means current host)

	// Object storage for avatars, banners, and post images
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads")

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region    string // AWS region
	StorageS3Bucket    string // S3 bucket name
	StorageS3Prefix    string // Key prefix (e.g., "driftwood/")
	StorageS3AccessKey string // Static access key (blank uses the default credential chain)
	StorageS3SecretKey string // Static secret key

	// Identity provider admin API. Blank URL disables outbound account
	// deletion (local development).
	IdentityProviderURL string // Base URL of the provider's admin API
	IdentityProviderKey string // Admin API key

	// Shared secret the identity provider sends on deletion hooks.
	// Blank disables the hook endpoint.
	HookSecret string

	// Google OAuth configuration
	GoogleClientID     string // Google OAuth2 client ID
	GoogleClientSecret string // Google OAuth2 client secret

	// Base URL for OAuth callbacks (e.g., "https://driftwood.example.com")
	BaseURL string

	// Upper bound for a full user-deletion cascade. Large accounts need
	// room; the platform's request limits are the real ceiling.
	CascadeTimeout time.Duration
}
