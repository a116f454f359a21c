// internal/app/features/outbox/handler.go
package outbox

import (
	"context"
	"errors"
	"net/http"

	outboxstore "github.com/dalemusser/memberhub/internal/app/store/outbox"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auditlog"
	"github.com/dalemusser/memberhub/internal/app/system/authz"
	"github.com/dalemusser/memberhub/internal/app/system/respond"
	"github.com/dalemusser/memberhub/internal/app/system/timeouts"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// listLimit caps how many tasks one listing returns.
const listLimit = 200

type Handler struct {
	Store    *outboxstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger

	// Kick wakes the dispatcher after a requeue. Optional.
	Kick func()
}

func NewHandler(store *outboxstore.Store, audit *auditlog.Logger, kick func(), logger *zap.Logger) *Handler {
	return &Handler{
		Store:    store,
		AuditLog: audit,
		Log:      logger,
		Kick:     kick,
	}
}

// ServeList handles GET /outbox?status=failed. Message bodies are never
// returned.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	status := query.Get(r, "status")
	switch status {
	case "", models.EmailPending, models.EmailSending, models.EmailSent, models.EmailFailed:
	default:
		respond.BadRequest(w, "Unknown status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tasks, err := h.Store.List(ctx, status, listLimit)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, tasks)
}

// HandleRetry handles POST /outbox/{id}/retry for a failed task.
func (h *Handler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "Invalid task id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Retry(ctx, id); err != nil {
		switch {
		case errors.Is(err, outboxstore.ErrNotFound):
			err = apperr.NotFound("Email task not found")
		case errors.Is(err, outboxstore.ErrNotFailed):
			err = apperr.Conflict("Only failed email can be retried")
		}
		respond.Error(w, r, h.Log, err)
		return
	}

	actor, _ := authz.ActorFrom(r)
	h.AuditLog.EmailRequeued(ctx, r, actor.ID, id)
	if h.Kick != nil {
		h.Kick()
	}
	respond.Message(w, http.StatusOK, "Email requeued")
}
