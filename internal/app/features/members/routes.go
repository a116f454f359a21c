// internal/app/features/members/routes.go
package members

import (
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the directory under the path where the caller mounts it.
// Typically: r.Mount("/users", members.Routes(handler, sm))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleFetch)
		pr.Patch("/", h.HandleUpdate)
		pr.Post("/change-password", h.HandleChangePassword)

		pr.Get("/{id}", h.ServeOne)
		pr.Patch("/{id}", h.HandleUpdateMultipart)
	})

	return r
}
