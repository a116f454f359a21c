// internal/app/features/members/handler.go
package members

import (
	"github.com/dalemusser/memberhub/internal/app/membership"
	"github.com/dalemusser/memberhub/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler serves the member directory and profile edits.
type Handler struct {
	Svc      *membership.Service
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(svc *membership.Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		AuditLog: audit,
		Log:      logger,
	}
}
