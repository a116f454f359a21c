// internal/app/features/files/handler.go
package files

import (
	"errors"
	"net/http"
	"os"

	"github.com/dalemusser/memberhub/internal/app/system/blobstore"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves blobs of the local store. The signed token in the path is
// the only credential.
type Handler struct {
	Blobs *blobstore.Local
	Log   *zap.Logger
}

func NewHandler(blobs *blobstore.Local, logger *zap.Logger) *Handler {
	return &Handler{Blobs: blobs, Log: logger}
}

// Serve handles GET /files/{token}.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	path, err := h.Blobs.Resolve(chi.URLParam(r, "token"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			h.Log.Warn("stat blob failed", zap.Error(err))
		}
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeFile(w, r, path)
}
