// internal/app/features/membership/routes.go
package membership

import (
	"github.com/easyfittrack/fittrack/internal/app/system/auth"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all membership lifecycle routes under the path where the
// caller mounts it. Typically: r.Mount("/membership", membership.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		// Join requests: submit, list for review, resolve.
		pr.Post("/join-requests", h.HandleSubmitJoinRequest)
		pr.With(auth.RequireRole(models.RoleOwner, models.RoleTrainer)).
			Get("/join-requests", h.ServeJoinRequests)
		pr.Post("/join-requests/{id}/accept", h.HandleAcceptJoinRequest)
		pr.Post("/join-requests/{id}/deny", h.HandleDenyJoinRequest)

		// Duration requests: submit (members), list and resolve (reviewers).
		pr.With(auth.RequireRole(models.RoleMember)).
			Post("/requests", h.HandleSubmitMembershipRequest)
		pr.With(auth.RequireRole(models.RoleOwner, models.RoleTrainer)).
			Get("/requests", h.ServeMembershipRequests)
		pr.Post("/requests/{id}/approve", h.HandleApproveMembershipRequest)
		pr.Post("/requests/{id}/deny", h.HandleDenyMembershipRequest)

		// Owner-only direct grant and removal.
		pr.With(auth.RequireRole(models.RoleOwner)).
			Put("/members/{id}", h.HandleSetMembership)
		pr.With(auth.RequireRole(models.RoleOwner)).
			Delete("/affiliates/{id}", h.HandleRemoveAffiliate)
	})

	return r
}
