// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/store/audit"
	"github.com/dalemusser/memberhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config picks a destination per event category: "all" writes to MongoDB
// and zap, "db" and "log" write to one of them, "off" drops the event.
type Config struct {
	Auth  string // login, logout, password changes
	Admin string // approvals, edits, requeues
}

// Logger records membership and auth events to the audit collection and
// the application log.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func requestMeta(r *http.Request) (ip, ua string) {
	if r == nil {
		return "", ""
	}
	return ratelimit.ClientIP(r), r.UserAgent()
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// destinations maps a category's setting to where its events go.
func (l *Logger) destinations(category string) (toLog, toDB bool) {
	setting := "all"
	switch category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	return setting == "all" || setting == "log", setting == "all" || setting == "db"
}

// Log records event wherever its category is configured to go. A nil
// Logger discards everything.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	toLog, toDB := l.destinations(event.Category)
	if toLog {
		l.logToZap(event)
	}
	if toDB && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) authEvent(r *http.Request, eventType string, userID *primitive.ObjectID, success bool, reason string, details map[string]string) audit.Event {
	ip, ua := requestMeta(r)
	return audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		UserID:        userID,
		IP:            ip,
		UserAgent:     ua,
		Success:       success,
		FailureReason: reason,
		Details:       details,
	}
}

func (l *Logger) adminEvent(r *http.Request, eventType string, actorID, userID *primitive.ObjectID, details map[string]string) audit.Event {
	ip, ua := requestMeta(r)
	return audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   actorID,
		UserID:    userID,
		IP:        ip,
		UserAgent: ua,
		Success:   true,
		Details:   details,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, l.authEvent(r, audit.EventLoginSuccess, &userID, true, "", map[string]string{
		"email": email,
	}))
}

// LoginFailedUserNotFound logs a failed login for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, l.authEvent(r, audit.EventLoginFailedUserNotFound, nil, false, "user not found", map[string]string{
		"attempted_email": attemptedEmail,
	}))
}

// LoginFailedWrongPassword logs a failed login due to wrong password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, l.authEvent(r, audit.EventLoginFailedWrongPassword, &userID, false, "wrong password", map[string]string{
		"email": email,
	}))
}

// LoginFailedRateLimit logs a login refused by the rate limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, l.authEvent(r, audit.EventLoginFailedRateLimit, nil, false, "rate limited", map[string]string{
		"email": email,
	}))
}

// Logout logs a sign-out. userIDStr may be empty or malformed for stale sessions.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var uid *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		uid = &oid
	}
	l.Log(ctx, l.authEvent(r, audit.EventLogout, uid, true, "", nil))
}

// PasswordChanged logs a successful password change.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, l.authEvent(r, audit.EventPasswordChanged, &userID, true, "", nil))
}

// --- Membership Events ---

// RegistrationSubmitted logs a new application from the public form.
func (l *Logger) RegistrationSubmitted(ctx context.Context, r *http.Request, registrationID primitive.ObjectID, membershipType string) {
	l.Log(ctx, l.adminEvent(r, audit.EventRegistrationSubmitted, nil, nil, map[string]string{
		"registration_id": registrationID.Hex(),
		"membership_type": membershipType,
	}))
}

// RegistrationApproved logs an approval and the member it produced.
func (l *Logger) RegistrationApproved(ctx context.Context, r *http.Request, actorID, registrationID, userID primitive.ObjectID, uniqueID, memberID string) {
	l.Log(ctx, l.adminEvent(r, audit.EventRegistrationApproved, &actorID, &userID, map[string]string{
		"registration_id": registrationID.Hex(),
		"unique_id":       uniqueID,
		"member_id":       memberID,
	}))
}

// RegistrationRejected logs a rejection.
func (l *Logger) RegistrationRejected(ctx context.Context, r *http.Request, actorID, registrationID primitive.ObjectID) {
	l.Log(ctx, l.adminEvent(r, audit.EventRegistrationRejected, &actorID, nil, map[string]string{
		"registration_id": registrationID.Hex(),
	}))
}

// ValidityUpdated logs a membership validity change.
func (l *Logger) ValidityUpdated(ctx context.Context, r *http.Request, actorID, registrationID primitive.ObjectID, year string) {
	l.Log(ctx, l.adminEvent(r, audit.EventValidityUpdated, &actorID, nil, map[string]string{
		"registration_id":     registrationID.Hex(),
		"membership_validity": year,
	}))
}

// UserUpdated logs a profile edit. fieldsChanged is a comma-separated list.
func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, actorID, targetUserID primitive.ObjectID, actorRole, fieldsChanged string) {
	l.Log(ctx, l.adminEvent(r, audit.EventUserUpdated, &actorID, &targetUserID, map[string]string{
		"actor_role":     actorRole,
		"fields_changed": fieldsChanged,
	}))
}

// InquiryUpdated logs an inquiry status change.
func (l *Logger) InquiryUpdated(ctx context.Context, r *http.Request, actorID, inquiryID primitive.ObjectID, status string) {
	l.Log(ctx, l.adminEvent(r, audit.EventInquiryUpdated, &actorID, nil, map[string]string{
		"inquiry_id": inquiryID.Hex(),
		"status":     status,
	}))
}

// EmailRequeued logs an admin retry of a failed email.
func (l *Logger) EmailRequeued(ctx context.Context, r *http.Request, actorID, taskID primitive.ObjectID) {
	l.Log(ctx, l.adminEvent(r, audit.EventEmailRequeued, &actorID, nil, map[string]string{
		"email_task_id": taskID.Hex(),
	}))
}
