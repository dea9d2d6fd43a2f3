// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/easyfittrack/fittrack/internal/app/system/auth"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a
// found flag. If no user is present in context or the user ID is malformed,
// it returns "visitor", "", NilObjectID, false, so callers can trust that
// ok=true means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in token - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// UserGymID returns the current user's gym ID as an ObjectID.
// Returns NilObjectID if the user is not signed in or is unaffiliated.
// For owners this is the gym they operate.
func UserGymID(r *http.Request) primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok || user.GymID == "" {
		return primitive.NilObjectID
	}
	oid, err := primitive.ObjectIDFromHex(user.GymID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

// IsOwner reports whether the current request's user is a gym owner.
func IsOwner(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleOwner
}

// IsTrainer reports whether the current request's user is a trainer.
func IsTrainer(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleTrainer
}

// IsMember reports whether the current request's user is a member.
func IsMember(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleMember
}

// CanReview decides whether an actor may resolve a request that belongs to
// resourceGymID and originates from requesterRole. This is the one place the
// reviewer rules live:
//   - owners review requests at their own gym;
//   - trainers review requests at the gym they are affiliated with, but only
//     member-originated ones (never requests from other trainers);
//   - everyone else may not review.
func CanReview(actorRole string, actorGymID, resourceGymID primitive.ObjectID, requesterRole string) bool {
	if actorGymID.IsZero() || actorGymID != resourceGymID {
		return false
	}
	switch actorRole {
	case models.RoleOwner:
		return true
	case models.RoleTrainer:
		return requesterRole == models.RoleMember
	}
	return false
}

// CanMessage reports whether an actor affiliated with actorGymID may use the
// chat room of gymID. Messaging never crosses gyms.
func CanMessage(actorGymID, gymID primitive.ObjectID) bool {
	return !actorGymID.IsZero() && actorGymID == gymID
}
