// internal/app/features/registrations/routes.go
package registrations

import (
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts registration routes (typically at "/register"). Submitting
// is public and rate limited; review is admin only.
func Routes(h *Handler, sm *auth.SessionManager, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	r.With(ratelimit.PerIP(limiter, "Too many registration attempts. Please try again later.")).
		Post("/", h.HandleRegister)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole("admin"))
		pr.Get("/", h.ServeList)
		pr.Put("/", h.HandleUpdate)
		pr.Post("/{id}/reject", h.HandleReject)
	})

	return r
}
