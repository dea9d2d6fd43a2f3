// internal/app/features/membership/joinrequests.go
package membership

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/easyfittrack/fittrack/internal/app/system/authz"
	"github.com/easyfittrack/fittrack/internal/app/system/lifecycle"
	"github.com/easyfittrack/fittrack/internal/app/system/respond"
	"github.com/easyfittrack/fittrack/internal/app/system/timeouts"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type submitJoinRequest struct {
	GymID    string `json:"gym_id"`
	Duration string `json:"duration,omitempty"`
}

// joinRequestView is the API shape of a join request, with the requester's
// name resolved for review screens.
type joinRequestView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	UserRole  string    `json:"user_role"`
	GymID     string    `json:"gym_id"`
	Duration  string    `json:"duration,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func joinViewOf(jr models.JoinRequest) joinRequestView {
	return joinRequestView{
		ID:        jr.ID.Hex(),
		UserID:    jr.UserID.Hex(),
		UserRole:  jr.UserRole,
		GymID:     jr.GymID.Hex(),
		Duration:  string(jr.Duration),
		Status:    jr.Status,
		CreatedAt: jr.CreatedAt,
	}
}

// HandleSubmitJoinRequest handles POST /membership/join-requests.
func (h *Handler) HandleSubmitJoinRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required")
		return
	}

	var req submitJoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	gymID, err := primitive.ObjectIDFromHex(req.GymID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid gym id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	jr, err := h.Engine.SubmitJoinRequest(ctx, actor, gymID, models.DurationCode(req.Duration))
	if err != nil {
		h.respondLifecycleErr(w, "submit join request", err)
		return
	}
	respond.JSON(w, http.StatusCreated, joinViewOf(jr))
}

// ServeJoinRequests handles GET /membership/join-requests: the pending queue
// for the reviewer's gym. Trainers see only member-originated requests.
func (h *Handler) ServeJoinRequests(w http.ResponseWriter, r *http.Request) {
	role, _, _, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required")
		return
	}
	gymID := authz.UserGymID(r)
	if gymID.IsZero() {
		respond.Error(w, http.StatusForbidden, "No gym on record for this account")
		return
	}

	roleFilter := ""
	if role == models.RoleTrainer {
		roleFilter = models.RoleMember
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pending, err := h.Joins.ListPendingByGym(ctx, gymID, roleFilter)
	if err != nil {
		h.Log.Error("join request list failed", zap.Error(err), zap.String("gym_id", gymID.Hex()))
		respond.Error(w, http.StatusInternalServerError, "Failed to load join requests")
		return
	}

	out := make([]joinRequestView, 0, len(pending))
	names, err := h.requesterNames(ctx, pending)
	if err != nil {
		h.Log.Error("join request name resolve failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to load join requests")
		return
	}
	for _, jr := range pending {
		v := joinViewOf(jr)
		v.UserName = names[jr.UserID]
		out = append(out, v)
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) requesterNames(ctx context.Context, reqs []models.JoinRequest) (map[primitive.ObjectID]string, error) {
	ids := make([]primitive.ObjectID, 0, len(reqs))
	for _, jr := range reqs {
		ids = append(ids, jr.UserID)
	}
	users, err := h.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName
	}
	return names, nil
}

// HandleAcceptJoinRequest handles POST /membership/join-requests/{id}/accept.
func (h *Handler) HandleAcceptJoinRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveJoinRequest(w, r, true)
}

// HandleDenyJoinRequest handles POST /membership/join-requests/{id}/deny.
func (h *Handler) HandleDenyJoinRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveJoinRequest(w, r, false)
}

func (h *Handler) resolveJoinRequest(w http.ResponseWriter, r *http.Request, accept bool) {
	actor, ok := actorFrom(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required")
		return
	}
	requestID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	jr, err := h.Engine.ResolveJoinRequest(ctx, actor, requestID, accept)
	if err != nil {
		h.respondLifecycleErr(w, "resolve join request", err)
		return
	}
	respond.JSON(w, http.StatusOK, joinViewOf(jr))
}

// respondLifecycleErr maps engine errors onto HTTP responses, logging only
// the unexpected ones.
func (h *Handler) respondLifecycleErr(w http.ResponseWriter, op string, err error) {
	status := lifecycle.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.Log.Error(op+" failed", zap.Error(err))
		respond.Error(w, status, "Operation failed")
		return
	}
	respond.Error(w, status, err.Error())
}
