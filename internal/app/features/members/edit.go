// internal/app/features/members/edit.go
package members

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/dalemusser/memberhub/internal/app/membership"
	"github.com/dalemusser/memberhub/internal/app/policy/memberpolicy"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/authz"
	"github.com/dalemusser/memberhub/internal/app/system/respond"
	"github.com/dalemusser/memberhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

const maxFormBytes = 10 << 20

// uploadFields are the multipart file fields accepted on profile edits.
var uploadFields = []string{"photo", "logo"}

type updateRequest struct {
	ID      string         `json:"id"`
	Updates map[string]any `json:"updates"`
}

// HandleUpdate handles PATCH /users with {"id", "updates"}. The acting
// user's role decides which fields are applied; the rest are dropped.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	id, err := parseUserID(req.ID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	actor, ok := authz.ActorFrom(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.Unauthorized("Unauthorized"))
		return
	}

	fields := membership.FlattenUpdates(req.Updates)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Svc.UpdateMember(ctx, actor, id, fields)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.UserUpdated(ctx, r, actor.ID, id, actor.Role, appliedFields(actor, fields, nil))
	respond.JSON(w, http.StatusOK, m)
}

// HandleUpdateMultipart handles PATCH /users/{id} with form fields and
// optional photo/logo files.
func (h *Handler) HandleUpdateMultipart(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	actor, ok := authz.ActorFrom(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.Unauthorized("Unauthorized"))
		return
	}

	if err := r.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		respond.BadRequest(w, "Invalid form data")
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	fields := make(map[string]string)
	for k, v := range r.PostForm {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}

	uploads := make(map[string]*membership.Upload)
	if r.MultipartForm != nil {
		for _, name := range uploadFields {
			file, hdr, err := r.FormFile(name)
			if err != nil {
				continue
			}
			defer file.Close()
			uploads[name] = &membership.Upload{
				Filename:    hdr.Filename,
				ContentType: hdr.Header.Get("Content-Type"),
				Body:        file,
			}
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	m, err := h.Svc.UpdateMemberWithUploads(ctx, actor, id, fields, uploads)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.UserUpdated(ctx, r, actor.ID, id, actor.Role, appliedFields(actor, fields, uploads))
	respond.JSON(w, http.StatusOK, m)
}

// appliedFields lists, comma separated, the fields the actor's permission
// set let through, uploads included.
func appliedFields(actor authz.Actor, fields map[string]string, uploads map[string]*membership.Upload) string {
	merged := make(map[string]string, len(fields)+len(uploads))
	for k, v := range fields {
		if k == "photo" || k == "logo" {
			continue
		}
		merged[k] = v
	}
	for k := range uploads {
		merged[k] = ""
	}
	kept, _ := memberpolicy.FilterUpdates(actor, merged)

	names := make([]string, 0, len(kept))
	for k := range kept {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// HandleChangePassword handles POST /users/change-password for the
// signed-in user.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	actor, ok := authz.ActorFrom(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.Unauthorized("Unauthorized"))
		return
	}
	userID := actor.ID

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Svc.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.PasswordChanged(ctx, r, userID)
	respond.Message(w, http.StatusOK, "Password updated successfully")
}
