// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for FitTrack.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: FITTRACK_MONGO_URI, FITTRACK_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "fittrack", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "JWT signing secret (must be strong in production)"},

	// Audit logging settings
	{Name: "audit_log_lifecycle", Default: "all", Desc: "Lifecycle event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_messaging", Default: "log", Desc: "Messaging event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Owner bootstrap
	{Name: "bootstrap_owner_email", Default: "", Desc: "Email of the bootstrap owner user (promotes/creates on startup)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, FITTRACK_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FITTRACK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),

		AuditLogLifecycle: appValues.String("audit_log_lifecycle"),
		AuditLogMessaging: appValues.String("audit_log_messaging"),

		BootstrapOwnerEmail: appValues.String("bootstrap_owner_email"),
	}

	return coreCfg, appCfg, nil
}

func validAuditMode(mode string) bool {
	switch mode {
	case "all", "db", "log", "off":
		return true
	}
	return false
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
//
// FitTrack validates the MongoDB URI format and the audit logging modes
// to catch configuration errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must not be empty")
	}

	if !validAuditMode(appCfg.AuditLogLifecycle) {
		return fmt.Errorf("audit_log_lifecycle must be one of all/db/log/off, got %q", appCfg.AuditLogLifecycle)
	}
	if !validAuditMode(appCfg.AuditLogMessaging) {
		return fmt.Errorf("audit_log_messaging must be one of all/db/log/off, got %q", appCfg.AuditLogMessaging)
	}

	return nil
}
