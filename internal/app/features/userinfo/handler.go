// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/respond"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type meResponse struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	MemberID        string `json:"memberId"`
}

// ServeUserInfo handles GET /me. Anonymous callers get isAuthenticated=false
// with empty fields, never an error.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	var resp meResponse
	if u, ok := auth.CurrentUser(r); ok {
		resp = meResponse{
			IsAuthenticated: true,
			ID:              u.ID,
			Name:            u.Name,
			Email:           u.Email,
			Role:            u.Role,
			MemberID:        u.MemberID,
		}
	}
	respond.JSON(w, http.StatusOK, resp)
}
