// internal/app/features/gyms/routes.go
package gyms

import (
	"github.com/easyfittrack/fittrack/internal/app/system/auth"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all gym routes under the path where the caller mounts it.
// Typically: r.Mount("/gyms", gyms.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeDetail)

		pr.With(auth.RequireRole(models.RoleOwner)).
			Put("/profile", h.HandleUpdateProfile)
	})

	return r
}
