// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/text"
	userstore "github.com/easyfittrack/fittrack/internal/app/store/users"
	"github.com/easyfittrack/fittrack/internal/app/system/timeouts"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. FitTrack
// uses it to apply timeout overrides and to make sure the configured
// bootstrap owner account exists.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeout overrides applied from environment", zap.Int("count", n))
	}

	if appCfg.BootstrapOwnerEmail != "" {
		if err := ensureBootstrapOwner(ctx, deps, appCfg.BootstrapOwnerEmail, logger); err != nil {
			return err
		}
	}

	return nil
}

// ensureBootstrapOwner promotes the user with the given email to owner,
// creating the account if it does not exist yet. This gives a fresh
// deployment at least one account that can approve join requests.
func ensureBootstrapOwner(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("bootstrap owner lookup: %w", err)
	}

	if existing != nil {
		if existing.Role == models.RoleOwner {
			logger.Info("bootstrap owner already present", zap.String("email", email))
			return nil
		}
		_, err := deps.MongoDatabase.Collection("users").UpdateOne(ctx,
			bson.M{"_id": existing.ID},
			bson.M{"$set": bson.M{"role": models.RoleOwner, "updated_at": time.Now().UTC()}})
		if err != nil {
			return fmt.Errorf("bootstrap owner promote: %w", err)
		}
		logger.Info("promoted existing user to owner",
			zap.String("email", email),
			zap.String("previous_role", existing.Role))
		return nil
	}

	now := time.Now().UTC()
	created, err := users.Create(ctx, models.User{
		FullName:   "Owner",
		FullNameCI: text.Fold("Owner"),
		Email:      email,
		Role:       models.RoleOwner,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return fmt.Errorf("bootstrap owner create: %w", err)
	}

	logger.Info("created bootstrap owner",
		zap.String("email", email),
		zap.String("user_id", created.ID.Hex()))
	return nil
}
