// internal/app/features/members/list.go
package members

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/normalize"
	"github.com/dalemusser/memberhub/internal/app/system/paging"
	"github.com/dalemusser/memberhub/internal/app/system/respond"
	"github.com/dalemusser/memberhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /users?q=&page=&size=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := normalize.QueryParam(query.Get(r, "q"))
	p := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Svc.ListMembers(ctx, q, p)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store, must-revalidate")
	respond.JSON(w, http.StatusOK, page)
}

// ServeOne handles GET /users/{id}.
func (h *Handler) ServeOne(w http.ResponseWriter, r *http.Request) {
	h.serveMember(w, r, chi.URLParam(r, "id"))
}

// HandleFetch handles POST /users with {"id": "..."}.
func (h *Handler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.serveMember(w, r, req.ID)
}

func (h *Handler) serveMember(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := parseUserID(rawID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Svc.GetMember(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, m)
}

func parseUserID(s string) (primitive.ObjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return primitive.NilObjectID, apperr.Validation("User id is required")
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid user id")
	}
	return id, nil
}
