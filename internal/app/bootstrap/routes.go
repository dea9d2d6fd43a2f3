// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	chatfeature "github.com/easyfittrack/fittrack/internal/app/features/chat"
	eventsfeature "github.com/easyfittrack/fittrack/internal/app/features/events"
	gymsfeature "github.com/easyfittrack/fittrack/internal/app/features/gyms"
	healthfeature "github.com/easyfittrack/fittrack/internal/app/features/health"
	membershipfeature "github.com/easyfittrack/fittrack/internal/app/features/membership"
	auditstore "github.com/easyfittrack/fittrack/internal/app/store/audit"
	gymstore "github.com/easyfittrack/fittrack/internal/app/store/gyms"
	joinrequeststore "github.com/easyfittrack/fittrack/internal/app/store/joinrequests"
	membershiprequeststore "github.com/easyfittrack/fittrack/internal/app/store/membershiprequests"
	userstore "github.com/easyfittrack/fittrack/internal/app/store/users"
	"github.com/easyfittrack/fittrack/internal/app/system/auditlog"
	"github.com/easyfittrack/fittrack/internal/app/system/auth"
	"github.com/easyfittrack/fittrack/internal/app/system/lifecycle"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// FitTrack initializes the JWT verifier, the audit logger, the membership
// lifecycle engine, and the chat hub, then mounts feature routers for the
// API surface: health, gyms, membership, chat, and events.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	verifier, err := auth.NewVerifier(appCfg.JWTSecret, logger)
	if err != nil {
		logger.Error("JWT verifier init failed", zap.Error(err))
		return nil, err
	}

	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Lifecycle: appCfg.AuditLogLifecycle,
		Messaging: appCfg.AuditLogMessaging,
	})

	engine := lifecycle.New(db,
		userstore.New(db),
		gymstore.New(db),
		joinrequeststore.New(db),
		membershiprequeststore.New(db),
		audit,
		logger,
	)

	hub := chatfeature.NewHub(logger)

	r := chi.NewRouter()

	// Global auth middleware: parses the bearer token (if any) and loads
	// the SessionUser into context. Individual feature routers decide
	// whether a signed-in user is required.
	r.Use(verifier.LoadUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Gym directory and profile management
	gymsHandler := gymsfeature.NewHandler(db, audit, logger)
	r.Mount("/gyms", gymsfeature.Routes(gymsHandler))

	// Membership lifecycle: join requests, duration requests, direct
	// grants, affiliate removal
	membershipHandler := membershipfeature.NewHandler(db, engine, logger)
	r.Mount("/membership", membershipfeature.Routes(membershipHandler))

	// Real-time gym chat (WebSocket) plus history/read/unread REST
	chatHandler := chatfeature.NewHandler(db, hub, audit, logger)
	r.Mount("/chat", chatfeature.Routes(chatHandler))

	// Audit event queries for owners
	eventsHandler := eventsfeature.NewHandler(db, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler))

	return r, nil
}
