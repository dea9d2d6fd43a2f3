// internal/app/features/membership/durationrequests.go
package membership

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/easyfittrack/fittrack/internal/app/system/authz"
	"github.com/easyfittrack/fittrack/internal/app/system/respond"
	"github.com/easyfittrack/fittrack/internal/app/system/timeouts"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type submitMembershipRequest struct {
	Duration string `json:"duration"`
}

type membershipRequestView struct {
	ID         string    `json:"id"`
	MemberID   string    `json:"member_id"`
	MemberName string    `json:"member_name,omitempty"`
	GymID      string    `json:"gym_id"`
	Duration   string    `json:"duration"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func membershipViewOf(mr models.MembershipRequest) membershipRequestView {
	return membershipRequestView{
		ID:        mr.ID.Hex(),
		MemberID:  mr.MemberID.Hex(),
		GymID:     mr.GymID.Hex(),
		Duration:  string(mr.RequestedDuration),
		Status:    mr.Status,
		CreatedAt: mr.CreatedAt,
	}
}

// HandleSubmitMembershipRequest handles POST /membership/requests: an
// affiliated member asks for a new membership duration.
func (h *Handler) HandleSubmitMembershipRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required")
		return
	}

	var req submitMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	mr, err := h.Engine.SubmitMembershipRequest(ctx, actor, models.DurationCode(req.Duration))
	if err != nil {
		h.respondLifecycleErr(w, "submit membership request", err)
		return
	}
	respond.JSON(w, http.StatusCreated, membershipViewOf(mr))
}

// ServeMembershipRequests handles GET /membership/requests: pending duration
// requests at the reviewer's gym, newest first.
func (h *Handler) ServeMembershipRequests(w http.ResponseWriter, r *http.Request) {
	gymID := authz.UserGymID(r)
	if gymID.IsZero() {
		respond.Error(w, http.StatusForbidden, "No gym on record for this account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pending, err := h.MemReqs.ListPendingByGym(ctx, gymID)
	if err != nil {
		h.Log.Error("membership request list failed", zap.Error(err), zap.String("gym_id", gymID.Hex()))
		respond.Error(w, http.StatusInternalServerError, "Failed to load membership requests")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(pending))
	for _, mr := range pending {
		ids = append(ids, mr.MemberID)
	}
	users, err := h.Users.GetByIDs(ctx, ids)
	if err != nil {
		h.Log.Error("membership request name resolve failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to load membership requests")
		return
	}
	names := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName
	}

	out := make([]membershipRequestView, 0, len(pending))
	for _, mr := range pending {
		v := membershipViewOf(mr)
		v.MemberName = names[mr.MemberID]
		out = append(out, v)
	}
	respond.JSON(w, http.StatusOK, out)
}

// HandleApproveMembershipRequest handles POST /membership/requests/{id}/approve.
func (h *Handler) HandleApproveMembershipRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveMembershipRequest(w, r, true)
}

// HandleDenyMembershipRequest handles POST /membership/requests/{id}/deny.
func (h *Handler) HandleDenyMembershipRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveMembershipRequest(w, r, false)
}

func (h *Handler) resolveMembershipRequest(w http.ResponseWriter, r *http.Request, approve bool) {
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

	mr, err := h.Engine.ResolveMembershipRequest(ctx, actor, requestID, approve)
	if err != nil {
		h.respondLifecycleErr(w, "resolve membership request", err)
		return
	}
	respond.JSON(w, http.StatusOK, membershipViewOf(mr))
}
