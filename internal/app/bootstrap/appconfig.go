// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig is where everything specific to FitTrack lives: the MongoDB
// connection, the JWT signing secret for API tokens, audit logging modes,
// and the optional bootstrap owner account.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// JWTSecret signs and verifies API bearer tokens. Must be a strong
	// random value in production.
	JWTSecret string

	// Audit logging modes: "all" (db+log), "db", "log", or "off".
	AuditLogLifecycle string // membership lifecycle events (join requests, durations, removals)
	AuditLogMessaging string // chat events (sends, read receipts, room joins)

	// BootstrapOwnerEmail, when set, promotes (or creates) an owner
	// account on startup so a fresh deployment has someone who can
	// approve requests.
	BootstrapOwnerEmail string
}
