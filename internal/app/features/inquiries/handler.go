// internal/app/features/inquiries/handler.go
package inquiries

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/memberhub/internal/app/membership"
	inquirystore "github.com/dalemusser/memberhub/internal/app/store/inquiries"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auditlog"
	"github.com/dalemusser/memberhub/internal/app/system/authz"
	"github.com/dalemusser/memberhub/internal/app/system/respond"
	"github.com/dalemusser/memberhub/internal/app/system/timeouts"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Store    *inquirystore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(store *inquirystore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    store,
		AuditLog: audit,
		Log:      logger,
	}
}

type createRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Business string `json:"business"`
}

// HandleCreate handles the public POST /inquiries.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		respond.Error(w, r, h.Log, apperr.Validation("Name and email are required"))
		return
	}
	if !membership.ValidEmail(req.Email) {
		respond.Error(w, r, h.Log, apperr.Validation("Invalid email format"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	in, err := h.Store.Create(ctx, models.Inquiry{Name: req.Name, Email: req.Email, Business: req.Business})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, in)
}

// ServeList handles GET /inquiries (admin).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Store.List(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

type statusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// HandleUpdateStatus handles PUT /inquiries {id, status} (admin).
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ID))
	if err != nil {
		respond.Error(w, r, h.Log, apperr.Validation("Invalid inquiry id"))
		return
	}
	if !models.ValidInquiryStatus(req.Status) {
		respond.Error(w, r, h.Log, apperr.Validation("Status must be one of: "+strings.Join(models.InquiryStatuses, ", ")))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, inquirystore.ErrNotFound) {
			respond.Error(w, r, h.Log, apperr.NotFound("Inquiry not found"))
			return
		}
		respond.Error(w, r, h.Log, err)
		return
	}

	actor, _ := authz.ActorFrom(r)
	h.AuditLog.InquiryUpdated(ctx, r, actor.ID, id, req.Status)
	respond.Message(w, http.StatusOK, "Inquiry updated")
}
