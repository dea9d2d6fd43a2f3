// internal/app/features/gyms/list.go
package gyms

import (
	"context"
	"net/http"

	"github.com/easyfittrack/fittrack/internal/app/system/respond"
	"github.com/easyfittrack/fittrack/internal/app/system/timeouts"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"go.uber.org/zap"
)

// gymSummary is the directory view of a gym: identity and headcounts, no
// roster details.
type gymSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	OwnerName    string `json:"owner_name,omitempty"`
	MemberCount  int    `json:"member_count"`
	TrainerCount int    `json:"trainer_count"`
}

func summaryOf(g models.Gym) gymSummary {
	return gymSummary{
		ID:           g.ID.Hex(),
		Name:         g.Name,
		Address:      g.Address,
		City:         g.City,
		OwnerName:    g.OwnerName,
		MemberCount:  len(g.MemberIDs),
		TrainerCount: len(g.TrainerIDs),
	}
}

// ServeList handles GET /gyms: every gym, sorted by name, for users picking
// one to join.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	gyms, err := h.Gyms.List(ctx)
	if err != nil {
		h.Log.Error("gym list failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to load gyms")
		return
	}

	out := make([]gymSummary, 0, len(gyms))
	for _, g := range gyms {
		out = append(out, summaryOf(g))
	}
	respond.JSON(w, http.StatusOK, out)
}
