// internal/app/features/events/handler.go
package events

import (
	"context"
	"net/http"
	"strconv"
	"time"

	auditstore "github.com/easyfittrack/fittrack/internal/app/store/audit"
	"github.com/easyfittrack/fittrack/internal/app/system/authz"
	"github.com/easyfittrack/fittrack/internal/app/system/respond"
	"github.com/easyfittrack/fittrack/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the audit event log to gym owners.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	Events *auditstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		Events: auditstore.New(db),
	}
}

// ServeList handles GET /events: recent audit events for the owner's gym,
// newest first. Supported query parameters: category, type, since (RFC 3339),
// limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	gymID := authz.UserGymID(r)
	if gymID.IsZero() {
		respond.Error(w, http.StatusForbidden, "No gym on record for this account")
		return
	}

	f := auditstore.Filter{
		GymID:     gymID,
		Category:  r.URL.Query().Get("category"),
		EventType: r.URL.Query().Get("type"),
	}
	if since := r.URL.Query().Get("since"); since != "" {
		ts, err := time.Parse(time.RFC3339, since)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "Invalid since timestamp")
			return
		}
		f.Since = ts
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.ParseInt(limit, 10, 64)
		if err != nil || n < 1 {
			respond.Error(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		f.Limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Events.Query(ctx, f)
	if err != nil {
		h.Log.Error("event query failed", zap.Error(err), zap.String("gym_id", gymID.Hex()))
		respond.Error(w, http.StatusInternalServerError, "Failed to load events")
		return
	}
	if events == nil {
		events = []auditstore.Event{}
	}
	respond.JSON(w, http.StatusOK, events)
}
