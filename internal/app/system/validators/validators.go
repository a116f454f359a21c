// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/memberhub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// collections lists every collection the app writes, with its JSON-Schema
// validator. A nil schema only ensures the collection exists.
func collections() []struct {
	name   string
	schema bson.M
} {
	return []struct {
		name   string
		schema bson.M
	}{
		{"users", usersSchema()},
		{"registrations", registrationsSchema()},
		{"inquiries", inquiriesSchema()},
		{"email_outbox", outboxSchema()},
		{"counters", nil}, // written only through the allocator
		{"audit_events", nil},
	}
}

// EnsureAll creates missing collections and attaches their validators.
// Servers without collMod support (some DocumentDB versions) skip the
// validator with a log line.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	existing := map[string]bool{}
	if names, err := db.ListCollectionNames(ctx, bson.M{}); err == nil {
		for _, n := range names {
			existing[n] = true
		}
	}

	var problems []string
	for _, c := range collections() {
		if !existing[c.name] {
			if err := db.CreateCollection(ctx, c.name); err != nil && !hasCode(err, 48, "already exists") {
				problems = append(problems, c.name+": "+err.Error())
				continue
			}
			zap.L().Info("created collection", zap.String("collection", c.name))
		}
		if c.schema == nil {
			continue
		}
		if err := setValidator(ctx, db, c.name, c.schema); err != nil {
			if hasCode(err, 59, "no such command") || hasCode(err, 115, "not implemented", "not supported") {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", c.name))
				continue
			}
			problems = append(problems, c.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	return db.RunCommand(ctx, cmd).Err()
}

// hasCode reports whether err is a command error with code, or its text
// contains one of the phrases.
func hasCode(err error, code int32, phrases ...string) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

/* ------------------------- JSON-Schema docs ---------------------- */

func toBSONArray(values []string) bson.A {
	out := make(bson.A, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "role", "password_hash"},
			"properties": bson.M{
				"name":          nonBlank,
				"email":         nonBlank,
				"role":          bson.M{"enum": bson.A{models.RoleMember, models.RoleAdmin}},
				"password_hash": nonBlank,
				"unique_id":     bson.M{"bsonType": "string", "pattern": "^[0-9]{5,}$"},
				"member_id":     bson.M{"bsonType": "string", "pattern": "^[A-Z][0-9]+$"},
			},
		},
	}
}

func registrationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "membership_type", "status"},
			"properties": bson.M{
				"name":            nonBlank,
				"email":           nonBlank,
				"membership_type": nonBlank,
				"status": bson.M{"enum": bson.A{
					models.RegistrationPending,
					models.RegistrationApproved,
					models.RegistrationRejected,
				}},
			},
		},
	}
}

func inquiriesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "status"},
			"properties": bson.M{
				"name":   nonBlank,
				"email":  nonBlank,
				"status": bson.M{"enum": toBSONArray(models.InquiryStatuses)},
			},
		},
	}
}

func outboxSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"kind", "to", "status", "attempts"},
			"properties": bson.M{
				"to": nonBlank,
				"status": bson.M{"enum": bson.A{
					models.EmailPending,
					models.EmailSending,
					models.EmailSent,
					models.EmailFailed,
				}},
				"attempts": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
			},
		},
	}
}
