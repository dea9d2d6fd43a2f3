// internal/app/features/membership/handler.go
package membership

import (
	"net/http"

	joinrequeststore "github.com/easyfittrack/fittrack/internal/app/store/joinrequests"
	membershiprequeststore "github.com/easyfittrack/fittrack/internal/app/store/membershiprequests"
	userstore "github.com/easyfittrack/fittrack/internal/app/store/users"
	"github.com/easyfittrack/fittrack/internal/app/system/authz"
	"github.com/easyfittrack/fittrack/internal/app/system/lifecycle"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for the membership lifecycle: join
// requests, duration requests, direct grants and removals. All state
// transitions go through the lifecycle engine; the stores here serve the
// read-only listing routes.
type Handler struct {
	DB      *mongo.Database
	Log     *zap.Logger
	Engine  *lifecycle.Engine
	Users   *userstore.Store
	Joins   *joinrequeststore.Store
	MemReqs *membershiprequeststore.Store
}

func NewHandler(db *mongo.Database, engine *lifecycle.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Log:     logger,
		Engine:  engine,
		Users:   userstore.New(db),
		Joins:   joinrequeststore.New(db),
		MemReqs: membershiprequeststore.New(db),
	}
}

// actorFrom builds the lifecycle actor for the signed-in user, or reports
// false when the request carries no valid user.
func actorFrom(r *http.Request) (lifecycle.Actor, bool) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return lifecycle.Actor{}, false
	}
	return lifecycle.Actor{
		ID:    userID,
		Role:  role,
		GymID: authz.UserGymID(r),
	}, true
}
