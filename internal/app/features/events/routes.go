// internal/app/features/events/routes.go
package events

import (
	"github.com/easyfittrack/fittrack/internal/app/system/auth"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the event log routes. Typically:
// r.Mount("/events", events.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.With(auth.RequireRole(models.RoleOwner)).
			Get("/", h.ServeList)
	})

	return r
}
