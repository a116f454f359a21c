// internal/app/features/outbox/routes.go
package outbox

import (
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts outbox inspection (typically at "/outbox"). Admin only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole("admin"))
		pr.Get("/", h.ServeList)
		pr.Post("/{id}/retry", h.HandleRetry)
	})

	return r
}
