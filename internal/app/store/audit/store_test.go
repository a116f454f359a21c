package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/memberhub/internal/app/store/audit"
	"github.com/dalemusser/memberhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	before := time.Now().Add(-time.Second)
	err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        "192.168.1.1",
		UserAgent: "TestBrowser/1.0",
		Success:   true,
		Details:   map[string]string{"email": "jane@example.com"},
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.ID.IsZero() {
		t.Error("expected ID to be auto-generated")
	}
	if got.Timestamp.Before(before) {
		t.Errorf("expected timestamp to be set to current time, got %v", got.Timestamp)
	}
	if got.Details["email"] != "jane@example.com" {
		t.Errorf("Details[email] = %q, want %q", got.Details["email"], "jane@example.com")
	}
}

func TestStore_Query_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	member := primitive.NewObjectID()
	old := time.Now().Add(-48 * time.Hour)

	seed := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &member, Success: true},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedWrongPassword, UserID: &member},
		{Category: audit.CategoryAdmin, EventType: audit.EventRegistrationApproved, UserID: &member, ActorID: &actor, Success: true},
		{Category: audit.CategoryAdmin, EventType: audit.EventRegistrationRejected, ActorID: &actor, Success: true, Timestamp: old},
	}
	for _, e := range seed {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	since := time.Now().Add(-time.Hour)
	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int
	}{
		{"all", audit.QueryFilter{}, 4},
		{"by category", audit.QueryFilter{Category: audit.CategoryAdmin}, 2},
		{"by event type", audit.QueryFilter{EventType: audit.EventLoginSuccess}, 1},
		{"by user", audit.QueryFilter{UserID: &member}, 3},
		{"involving actor", audit.QueryFilter{Involving: &actor}, 2},
		{"involving member", audit.QueryFilter{Involving: &member}, 3},
		{"since", audit.QueryFilter{StartTime: &since}, 3},
		{"until", audit.QueryFilter{EndTime: &since}, 1},
		{"limit", audit.QueryFilter{Limit: 2}, 2},
		{"offset", audit.QueryFilter{Offset: 3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("Query returned %d events, want %d", len(events), tt.want)
			}
		})
	}

	n, err := store.CountByFilter(ctx, audit.QueryFilter{Category: audit.CategoryAuth})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountByFilter = %d, want 2", n)
	}
}

func TestStore_Query_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		err := store.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventLogout,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Details:   map[string]string{"n": string(rune('a' + i))},
		})
		if err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Details["n"] != "c" {
		t.Errorf("first event = %q, want newest %q", events[0].Details["n"], "c")
	}
}
