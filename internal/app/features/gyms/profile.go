// internal/app/features/gyms/profile.go
package gyms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	gymstore "github.com/easyfittrack/fittrack/internal/app/store/gyms"
	"github.com/easyfittrack/fittrack/internal/app/system/authz"
	"github.com/easyfittrack/fittrack/internal/app/system/respond"
	"github.com/easyfittrack/fittrack/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type profileRequest struct {
	Address   string `json:"address"`
	City      string `json:"city"`
	OwnerName string `json:"owner_name"`
}

// HandleUpdateProfile handles PUT /gyms/profile: the owner edits their own
// gym's contact fields. Empty fields are left unchanged. All text is
// sanitized before it is stored.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required")
		return
	}
	gymID := authz.UserGymID(r)
	if gymID.IsZero() {
		respond.Error(w, http.StatusForbidden, "No gym on record for this account")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := gymstore.ProfileUpdate{
		Address:   h.sanitize.Sanitize(strings.TrimSpace(req.Address)),
		City:      h.sanitize.Sanitize(strings.TrimSpace(req.City)),
		OwnerName: h.sanitize.Sanitize(strings.TrimSpace(req.OwnerName)),
	}
	if update == (gymstore.ProfileUpdate{}) {
		respond.Error(w, http.StatusBadRequest, "No fields to update")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Gyms.UpdateProfile(ctx, gymID, update); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "Gym not found")
			return
		}
		h.Log.Error("gym profile update failed", zap.Error(err), zap.String("gym_id", gymID.Hex()))
		respond.Error(w, http.StatusInternalServerError, "Failed to update gym profile")
		return
	}

	h.AuditLog.GymProfileUpdated(actorID, "owner", gymID, changedFields(update))

	gym, err := h.Gyms.GetByID(ctx, gymID)
	if err != nil {
		h.Log.Error("gym reload failed", zap.Error(err), zap.String("gym_id", gymID.Hex()))
		respond.Error(w, http.StatusInternalServerError, "Failed to load updated gym")
		return
	}
	respond.JSON(w, http.StatusOK, summaryOf(gym))
}

func changedFields(u gymstore.ProfileUpdate) string {
	var fields []string
	if u.Address != "" {
		fields = append(fields, "address")
	}
	if u.City != "" {
		fields = append(fields, "city")
	}
	if u.OwnerName != "" {
		fields = append(fields, "owner_name")
	}
	return strings.Join(fields, ",")
}
