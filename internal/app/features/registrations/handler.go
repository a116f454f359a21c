// internal/app/features/registrations/handler.go
package registrations

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/memberhub/internal/app/membership"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auditlog"
	"github.com/dalemusser/memberhub/internal/app/system/authz"
	"github.com/dalemusser/memberhub/internal/app/system/respond"
	"github.com/dalemusser/memberhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

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

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleRegister accepts a membership application as multipart form data
// (with an optional "photo" file) or as JSON.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	app, photo, cleanup, err := parseApplication(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Svc.Register(ctx, app, photo)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	h.AuditLog.RegistrationSubmitted(ctx, r, res.ID, app.MembershipType)
	respond.JSON(w, http.StatusCreated, map[string]any{
		"message":  "Registration submitted successfully",
		"id":       res.ID,
		"photoKey": res.PhotoKey,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register (admin)                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	regs, err := h.Svc.ListRegistrations(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, regs)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /register (admin)                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

type updateRequest struct {
	ID                 string  `json:"id"`
	MembershipValidity *string `json:"membershipValidity"`
}

// HandleUpdate approves a registration, or with membershipValidity present
// only records the validity year.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	id, err := parseID(req.ID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	actor, _ := authz.ActorFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if req.MembershipValidity != nil {
		if err := h.Svc.SetMembershipValidity(ctx, id, *req.MembershipValidity); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		h.AuditLog.ValidityUpdated(ctx, r, actor.ID, id, strings.TrimSpace(*req.MembershipValidity))
		respond.Message(w, http.StatusOK, "Membership validity updated")
		return
	}

	res, err := h.Svc.Approve(ctx, id, actor)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.RegistrationApproved(ctx, r, actor.ID, id, res.UserID, res.UniqueID, res.MemberID)
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":  "Registration approved",
		"userId":   res.UserID,
		"uniqueId": res.UniqueID,
		"memberId": res.MemberID,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register/{id}/reject (admin)                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	actor, _ := authz.ActorFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Svc.Reject(ctx, id, actor); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.RegistrationRejected(ctx, r, actor.ID, id)
	respond.Message(w, http.StatusOK, "Registration rejected")
}

func parseID(s string) (primitive.ObjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return primitive.NilObjectID, apperr.Validation("Registration id is required")
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid registration id")
	}
	return id, nil
}
