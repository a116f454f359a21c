// internal/app/features/inquiries/routes.go
package inquiries

import (
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts inquiry routes (typically at "/inquiries").
func Routes(h *Handler, sm *auth.SessionManager, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	r.With(ratelimit.PerIP(limiter, "Too many inquiries. Please try again later.")).
		Post("/", h.HandleCreate)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole("admin"))
		pr.Get("/", h.ServeList)
		pr.Put("/", h.HandleUpdateStatus)
	})

	return r
}
