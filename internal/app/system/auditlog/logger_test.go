package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/memberhub/internal/app/store/audit"
	"github.com/dalemusser/memberhub/internal/app/system/auditlog"
	"github.com/dalemusser/memberhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, primitive.NewObjectID(), "jane@example.com")
	logger.Logout(ctx, req, primitive.NewObjectID().Hex())
	logger.RegistrationApproved(ctx, req, primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID(), "10001", "C10000")
}

func TestLogger_Log_ConfigModes(t *testing.T) {
	tests := []struct {
		setting string
		wantDB  int
	}{
		{"off", 0},
		{"log", 0},
		{"db", 1},
		{"all", 1},
	}

	for _, tt := range tests {
		t.Run(tt.setting, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			userID := primitive.NewObjectID()
			logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: tt.setting, Admin: tt.setting})
			logger.Log(ctx, audit.Event{
				Category:  audit.CategoryAuth,
				EventType: audit.EventLoginSuccess,
				UserID:    &userID,
				Success:   true,
			})

			events, err := store.GetByUser(ctx, userID, 10)
			if err != nil {
				t.Fatalf("GetByUser failed: %v", err)
			}
			if len(events) != tt.wantDB {
				t.Errorf("stored %d events, want %d", len(events), tt.wantDB)
			}
		})
	}
}

func TestLogger_LoginSuccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db"})

	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	req.Header.Set("User-Agent", "TestBrowser/1.0")

	logger.LoginSuccess(ctx, req, userID, "jane@example.com")

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.EventType != audit.EventLoginSuccess {
		t.Errorf("EventType: got %q, want %q", event.EventType, audit.EventLoginSuccess)
	}
	if !event.Success {
		t.Error("expected Success to be true")
	}
	if event.UserAgent != "TestBrowser/1.0" {
		t.Errorf("UserAgent: got %q", event.UserAgent)
	}
	if event.Details["email"] != "jane@example.com" {
		t.Errorf("Details[email]: got %q", event.Details["email"])
	}
}

func TestLogger_LoginFailedUserNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db"})

	req := httptest.NewRequest("POST", "/login", nil)
	logger.LoginFailedUserNotFound(ctx, req, "unknown@example.com")

	// no user id, so read the most recent events
	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.EventType != audit.EventLoginFailedUserNotFound {
		t.Errorf("EventType: got %q, want %q", event.EventType, audit.EventLoginFailedUserNotFound)
	}
	if event.Success {
		t.Error("expected Success to be false")
	}
	if event.FailureReason != "user not found" {
		t.Errorf("FailureReason: got %q, want %q", event.FailureReason, "user not found")
	}
}

func TestLogger_Logout_InvalidID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db"})

	req := httptest.NewRequest("POST", "/logout", nil)
	logger.Logout(ctx, req, "invalid-hex")

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 1 || events[0].UserID != nil {
		t.Errorf("expected one logout event without user id, got %+v", events)
	}
}

func TestLogger_RegistrationApproved(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actorID := primitive.NewObjectID()
	regID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Admin: "db"})

	req := httptest.NewRequest("PUT", "/register", nil)
	logger.RegistrationApproved(ctx, req, actorID, regID, userID, "10001", "C10000")

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.Category != audit.CategoryAdmin {
		t.Errorf("Category: got %q, want %q", event.Category, audit.CategoryAdmin)
	}
	if event.ActorID == nil || *event.ActorID != actorID {
		t.Error("expected ActorID to be set")
	}
	if event.Details["registration_id"] != regID.Hex() || event.Details["member_id"] != "C10000" {
		t.Errorf("unexpected details %v", event.Details)
	}
}

func TestLogger_AuthCategoryFilteredByConfig(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Auth:  "off",
		Admin: "db",
	})

	req := httptest.NewRequest("GET", "/", nil)

	logger.LoginSuccess(ctx, req, userID, "jane@example.com")

	target := primitive.NewObjectID()
	logger.UserUpdated(ctx, req, userID, target, "admin", "name,email")

	authEvents, _ := store.GetByUser(ctx, userID, 10)
	if len(authEvents) != 0 {
		t.Error("expected no auth events when auth config is 'off'")
	}

	adminEvents, _ := store.GetByUser(ctx, target, 10)
	if len(adminEvents) != 1 {
		t.Errorf("expected 1 admin event, got %d", len(adminEvents))
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"forwarded for wins", "203.0.113.195, 10.0.0.1", "192.168.1.1", "127.0.0.1:12345", "203.0.113.195"},
		{"real ip", "", "192.168.1.100", "127.0.0.1:12345", "192.168.1.100"},
		{"remote addr without port", "", "", "10.0.0.5:12345", "10.0.0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			userID := primitive.NewObjectID()
			logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db"})

			req := httptest.NewRequest("GET", "/", nil)
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			req.RemoteAddr = tt.remoteAddr

			logger.LoginSuccess(ctx, req, userID, "jane@example.com")

			events, _ := store.GetByUser(ctx, userID, 10)
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			if events[0].IP != tt.want {
				t.Errorf("IP: got %q, want %q", events[0].IP, tt.want)
			}
		})
	}
}
