package inquirystore_test

import (
	"errors"
	"testing"
	"time"

	inquirystore "github.com/dalemusser/memberhub/internal/app/store/inquiries"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/memberhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_DefaultsStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := inquirystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in, err := store.Create(ctx, models.Inquiry{Name: " Sam ", Email: "SAM@example.com", Business: "Imports"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if in.Status != models.InquiryJustInquiry {
		t.Errorf("Status = %q, want %q", in.Status, models.InquiryJustInquiry)
	}
	if in.Email != "sam@example.com" || in.Name != "Sam" {
		t.Errorf("normalized = %q %q", in.Name, in.Email)
	}

	if _, err := store.Create(ctx, models.Inquiry{Name: "X", Email: "x@example.com", Status: "Closed"}); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestStore_List_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := inquirystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, name := range []string{"first", "second"} {
		if _, err := store.Create(ctx, models.Inquiry{Name: name, Email: name + "@example.com"}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].Name != "second" {
		t.Errorf("List = %+v, want second first", list)
	}
}

func TestStore_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := inquirystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in, err := store.Create(ctx, models.Inquiry{Name: "Sam", Email: "sam@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tests := []struct {
		name    string
		id      primitive.ObjectID
		status  string
		wantErr bool
		notFound bool
	}{
		{"valid", in.ID, models.InquiryPlanning, false, false},
		{"registered", in.ID, models.InquiryRegistered, false, false},
		{"bad status", in.ID, "Closed", true, false},
		{"missing", primitive.NewObjectID(), models.InquiryPlanning, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.UpdateStatus(ctx, tt.id, tt.status)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UpdateStatus error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.notFound && !errors.Is(err, inquirystore.ErrNotFound) {
				t.Errorf("UpdateStatus error = %v, want ErrNotFound", err)
			}
		})
	}
}
