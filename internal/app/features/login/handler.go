// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auditlog"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/normalize"
	"github.com/dalemusser/memberhub/internal/app/system/ratelimit"
	"github.com/dalemusser/memberhub/internal/app/system/respond"
	"github.com/dalemusser/memberhub/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid email or password"

// dummyHash is compared against when the email is unknown so that both
// failure paths cost one bcrypt round.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("memberhub-no-such-user"), bcrypt.DefaultCost)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sm *auth.SessionManager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sm,
		Limiter:    limiter,
		AuditLog:   audit,
		Log:        logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message  string `json:"message"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	MemberID string `json:"memberId,omitempty"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLogin checks the credentials and issues a session cookie.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		respond.Error(w, r, h.Log, apperr.Validation("Email and password are required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, email); !ok {
			h.AuditLog.LoginFailedRateLimit(ctx, r, email)
			respond.JSON(w, http.StatusTooManyRequests, map[string]string{"error": reason, "message": reason})
			return
		}
	}

	u, err := h.Users.GetByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		h.AuditLog.LoginFailedUserNotFound(ctx, r, email)
		respond.Error(w, r, h.Log, apperr.Unauthorized(invalidCredentials))
		return
	}
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, email)
		respond.Error(w, r, h.Log, apperr.Unauthorized(invalidCredentials))
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("login: save session", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		respond.Error(w, r, h.Log, err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, email)

	respond.JSON(w, http.StatusOK, loginResponse{
		Message:  "Login successful",
		ID:       u.ID.Hex(),
		Name:     u.Name,
		Email:    u.Email,
		Role:     strings.ToLower(u.Role),
		MemberID: u.MemberID,
	})
}
