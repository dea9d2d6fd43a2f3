// internal/app/features/membership/direct.go
package membership

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/easyfittrack/fittrack/internal/app/system/respond"
	"github.com/easyfittrack/fittrack/internal/app/system/timeouts"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type setMembershipRequest struct {
	Duration string `json:"duration"`
}

type setMembershipResponse struct {
	MemberID   string `json:"member_id"`
	Duration   string `json:"duration"`
	Reconciled bool   `json:"reconciled_pending_request"`
}

// HandleSetMembership handles PUT /membership/members/{id}: the owner grants
// a membership directly. A pending request for the same duration is approved
// in the same transaction and reported in the response.
func (h *Handler) HandleSetMembership(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required")
		return
	}
	memberID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid member id")
		return
	}

	var req setMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	reconciled, err := h.Engine.SetMembershipDirectly(ctx, actor, memberID, models.DurationCode(req.Duration))
	if err != nil {
		h.respondLifecycleErr(w, "set membership", err)
		return
	}
	respond.JSON(w, http.StatusOK, setMembershipResponse{
		MemberID:   memberID.Hex(),
		Duration:   req.Duration,
		Reconciled: reconciled,
	})
}

// HandleRemoveAffiliate handles DELETE /membership/affiliates/{id}: the owner
// detaches a member or trainer from their gym.
func (h *Handler) HandleRemoveAffiliate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required")
		return
	}
	affiliateID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid affiliate id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Engine.RemoveAffiliate(ctx, actor, affiliateID); err != nil {
		h.respondLifecycleErr(w, "remove affiliate", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Affiliate removed"})
}
