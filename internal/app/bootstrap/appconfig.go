// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, log level); AppConfig is
// everything specific to FlockHub.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Token-based authentication
	TokenSecret     string        // HMAC signing key for access and refresh tokens
	AccessTokenTTL  time.Duration // Access token lifetime
	RefreshTokenTTL time.Duration // Refresh token lifetime

	// Initial admin account, created on startup if missing
	AdminEmail    string
	AdminPassword string

	// AI text generation (pastoral insights and member tagging)
	AIProvider   string        // "gemini" or "local"
	AIBaseURL    string        // local OpenAI-compatible endpoint
	AIModel      string        // model name for the local backend
	GeminiAPIKey string        // Google AI Studio key (gemini backend)
	AITimeout    time.Duration // per-request generation timeout
}
