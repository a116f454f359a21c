// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/system/auditlog"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/respond"
	"go.uber.org/zap"
)

type Handler struct {
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		Log:        logger,
	}
}

// HandleLogout handles POST /logout. The cookie is cleared even when the
// session could not be decoded.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var userID string
	if u, ok := auth.CurrentUser(r); ok {
		userID = u.ID
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	if userID != "" {
		h.AuditLog.Logout(r.Context(), r, userID)
	}

	respond.Message(w, http.StatusOK, "Logged out")
}
