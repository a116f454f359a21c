// Package membershiptest wires a membership.Service against a test
// database and a temporary local blob store for handler tests.
package membershiptest

import (
	"testing"

	"github.com/dalemusser/memberhub/internal/app/membership"
	counterstore "github.com/dalemusser/memberhub/internal/app/store/counters"
	outboxstore "github.com/dalemusser/memberhub/internal/app/store/outbox"
	registrationstore "github.com/dalemusser/memberhub/internal/app/store/registrations"
	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/blobstore"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SigningKey signs local blob tokens in tests.
var SigningKey = []byte("membershiptest-signing-key-0123456789")

// Env is a service plus the stores behind it.
type Env struct {
	Service       *membership.Service
	Blobs         *blobstore.Local
	Users         *userstore.Store
	Registrations *registrationstore.Store
	Counters      *counterstore.Store
	Outbox        *outboxstore.Store
}

// New builds an Env on db. Blobs live under a per-test temp dir and are
// served from /files.
func New(t *testing.T, db *mongo.Database) *Env {
	t.Helper()

	blobs, err := blobstore.NewLocal(t.TempDir(), "/files", SigningKey)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	e := &Env{
		Blobs:         blobs,
		Users:         userstore.New(db),
		Registrations: registrationstore.New(db),
		Counters:      counterstore.New(db),
		Outbox:        outboxstore.New(db),
	}
	e.Service = membership.New(membership.Deps{
		Registrations: e.Registrations,
		Users:         e.Users,
		Counters:      e.Counters,
		Outbox:        e.Outbox,
		Blobs:         blobs,
		Log:           zap.NewNop(),
	}, membership.Options{
		SiteName:   "Test Council",
		BaseURL:    "http://localhost:8080",
		BcryptCost: bcrypt.MinCost,
	})
	return e
}
