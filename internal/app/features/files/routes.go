// internal/app/features/files/routes.go
package files

import "github.com/go-chi/chi/v5"

// Routes mounts the local blob reader (typically at "/files").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{token}", h.Serve)
	return r
}
