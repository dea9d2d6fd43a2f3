// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	auditstore "github.com/easyfittrack/fittrack/internal/app/store/audit"
	gymstore "github.com/easyfittrack/fittrack/internal/app/store/gyms"
	joinrequeststore "github.com/easyfittrack/fittrack/internal/app/store/joinrequests"
	membershiprequeststore "github.com/easyfittrack/fittrack/internal/app/store/membershiprequests"
	messagestore "github.com/easyfittrack/fittrack/internal/app/store/messages"
	userstore "github.com/easyfittrack/fittrack/internal/app/store/users"
	"github.com/easyfittrack/fittrack/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and verifies it with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the indexes every store depends on. It runs after
// ConnectDB and before any handlers are built, so uniqueness guarantees
// (pending-request dedupe, email uniqueness) hold from the first request.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	ensure := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"users", userstore.New(db).EnsureIndexes},
		{"gyms", gymstore.New(db).EnsureIndexes},
		{"join_requests", joinrequeststore.New(db).EnsureIndexes},
		{"membership_requests", membershiprequeststore.New(db).EnsureIndexes},
		{"messages", messagestore.New(db).EnsureIndexes},
		{"event_logs", auditstore.New(db).EnsureIndexes},
	}

	for _, e := range ensure {
		if err := e.fn(ctx); err != nil {
			logger.Error("index creation failed", zap.String("collection", e.name), zap.Error(err))
			return fmt.Errorf("ensure indexes for %s: %w", e.name, err)
		}
	}

	logger.Info("MongoDB indexes ensured")
	return nil
}
