// internal/app/features/gyms/handler.go
package gyms

import (
	gymstore "github.com/easyfittrack/fittrack/internal/app/store/gyms"
	userstore "github.com/easyfittrack/fittrack/internal/app/store/users"
	"github.com/easyfittrack/fittrack/internal/app/system/auditlog"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for gym directory and profile routes.
// It holds the DB handle, stores, and logger provided by DBDeps / Startup.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Gyms     *gymstore.Store
	Users    *userstore.Store

	// sanitize strips all markup from client-supplied profile text.
	sanitize *bluemonday.Policy
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		AuditLog: audit,
		Gyms:     gymstore.New(db),
		Users:    userstore.New(db),
		sanitize: bluemonday.StrictPolicy(),
	}
}
