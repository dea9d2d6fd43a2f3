// internal/app/features/gyms/detail.go
package gyms

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/easyfittrack/fittrack/internal/app/system/respond"
	"github.com/easyfittrack/fittrack/internal/app/system/timeouts"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// personView is the roster entry for a member or trainer.
type personView struct {
	ID         string          `json:"id"`
	FullName   string          `json:"full_name"`
	Role       string          `json:"role"`
	Membership *membershipView `json:"membership,omitempty"`
}

type membershipView struct {
	Duration  string    `json:"duration"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Expired   bool      `json:"expired"`
}

type gymDetail struct {
	gymSummary
	Members  []personView `json:"members"`
	Trainers []personView `json:"trainers"`
}

func personOf(u models.User, now time.Time) personView {
	p := personView{
		ID:       u.ID.Hex(),
		FullName: u.FullName,
		Role:     u.Role,
	}
	if u.Membership != nil {
		p.Membership = &membershipView{
			Duration:  string(u.Membership.Duration),
			StartDate: u.Membership.StartDate,
			EndDate:   u.Membership.EndDate,
			Expired:   u.Membership.Expired(now),
		}
	}
	return p
}

// ServeDetail handles GET /gyms/{id}: the gym with its member and trainer
// rosters resolved to users. The gym's ID lists are the lookup source; users
// whose affiliation moved on are simply absent from the result.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	gymID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid gym id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	gym, err := h.Gyms.GetByID(ctx, gymID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "Gym not found")
			return
		}
		h.Log.Error("gym load failed", zap.Error(err), zap.String("gym_id", gymID.Hex()))
		respond.Error(w, http.StatusInternalServerError, "Failed to load gym")
		return
	}

	now := time.Now().UTC()
	detail := gymDetail{
		gymSummary: summaryOf(gym),
		Members:    []personView{},
		Trainers:   []personView{},
	}

	members, err := h.Users.GetByIDs(ctx, gym.MemberIDs)
	if err != nil {
		h.Log.Error("gym member resolve failed", zap.Error(err), zap.String("gym_id", gymID.Hex()))
		respond.Error(w, http.StatusInternalServerError, "Failed to load gym members")
		return
	}
	for _, u := range members {
		detail.Members = append(detail.Members, personOf(u, now))
	}

	trainers, err := h.Users.GetByIDs(ctx, gym.TrainerIDs)
	if err != nil {
		h.Log.Error("gym trainer resolve failed", zap.Error(err), zap.String("gym_id", gymID.Hex()))
		respond.Error(w, http.StatusInternalServerError, "Failed to load gym trainers")
		return
	}
	for _, u := range trainers {
		detail.Trainers = append(detail.Trainers, personOf(u, now))
	}

	respond.JSON(w, http.StatusOK, detail)
}
