package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts test documents directly, bypassing stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// SampleProfile returns a complete applicant profile for email.
func SampleProfile(name, email, membershipType string) models.Profile {
	return models.Profile{
		Name:           name,
		Email:          email,
		CompanyName:    "Acme Trading",
		Profession:     "Engineer",
		Nationality:    "Indian",
		MembershipType: membershipType,
		Mobile:         "+96550000000",
	}
}

// CreateRegistration inserts a registration with the given status.
func (f *Fixtures) CreateRegistration(ctx context.Context, name, email, membershipType, status string) models.Registration {
	f.t.Helper()

	now := time.Now().UTC()
	reg := models.Registration{
		ID:        primitive.NewObjectID(),
		Profile:   SampleProfile(name, email, membershipType),
		Consent:   true,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("registrations").InsertOne(ctx, reg); err != nil {
		f.t.Fatalf("failed to create test registration: %v", err)
	}
	return reg
}

// CreateMember inserts a member user with the given identifiers.
func (f *Fixtures) CreateMember(ctx context.Context, name, email, uniqueID, memberID string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Profile:   SampleProfile(name, email, models.MembershipCorporate),
		Role:      models.RoleMember,
		UniqueID:  uniqueID,
		MemberID:  memberID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return u
}

// CreateAdmin inserts an admin user with the given bcrypt hash.
func (f *Fixtures) CreateAdmin(ctx context.Context, email, passwordHash string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Profile:      models.Profile{Name: "Administrator", Email: email},
		Role:         models.RoleAdmin,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test admin: %v", err)
	}
	return u
}
