// internal/app/features/stats/routes.go
package stats

import (
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the admin dashboard counts (typically at "/stats").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.With(sm.RequireRole("admin")).Get("/", h.ServeStats)
	return r
}
