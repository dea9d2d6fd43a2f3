// internal/app/features/chat/routes.go
package chat

import (
	"github.com/easyfittrack/fittrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all chat routes under the path where the caller mounts it.
// Typically: r.Mount("/chat", chat.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/ws", h.ServeWS)
		pr.Get("/history/{userID}", h.ServeHistory)
		pr.Post("/read", h.HandleMarkRead)
		pr.Get("/unread", h.ServeUnread)
	})

	return r
}
