// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll builds every index the membership collections rely on. It is
// idempotent and runs at startup; problems from all collections are
// reported together.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	sets := []struct {
		name   string
		ensure func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"registrations", ensureRegistrations},
		{"inquiries", ensureInquiries},
		{"email_outbox", ensureOutbox},
		{"audit_events", ensureAuditEvents},
	}

	var problems []string
	for _, set := range sets {
		if err := set.ensure(ctx, db); err != nil {
			problems = append(problems, set.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconciling one collection                                                  */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique,omitempty"`
}

// keySig renders an index key pattern, e.g. "email:1, status:1".
func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			return nil, err
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet makes coll carry each wanted index. An index with the same
// keys is reused when its name and uniqueness match, and rebuilt otherwise.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, wanted []mongo.IndexModel) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// a collection that does not exist yet has no indexes
		zap.L().Debug("list indexes failed", zap.String("collection", coll.Name()), zap.Error(err))
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range wanted {
		var name string
		var unique bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique != nil && *m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if ex.Unique == unique && (name == "" || ex.Name == name) {
				continue
			}
			zap.L().Info("rebuilding index",
				zap.String("collection", coll.Name()),
				zap.String("from", ex.Name),
				zap.String("to", name),
				zap.String("keys", sig))
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s: %v", name, ex.Name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if unique && wafflemongo.IsDup(err) {
				errs = append(errs, fmt.Sprintf("%s: duplicate values on %s prevent a unique index", name, sig))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
			continue
		}
		zap.L().Info("index created",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique),
			zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

// hasString matches documents where field holds a string, so accounts
// without an identifier (admins) stay out of the unique index.
func hasString(field string) bson.M {
	return bson.M{field: bson.M{"$type": "string"}}
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Login and duplicate detection.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// Identifiers are assigned once and must never collide.
		{
			Keys: bson.D{{Key: "unique_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_unique_id").
				SetPartialFilterExpression(hasString("unique_id")),
		},
		{
			Keys: bson.D{{Key: "member_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_member_id").
				SetPartialFilterExpression(hasString("member_id")),
		},
		// Directory listing: role != admin, newest first.
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_users_role_createdat"),
		},
		// Stats: counts per membership type and recent joins.
		{
			Keys:    bson.D{{Key: "membership_type", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_users_type_createdat"),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_users_name"),
		},
		{
			Keys:    bson.D{{Key: "mobile", Value: 1}},
			Options: options.Index().SetName("idx_users_mobile"),
		},
		{
			Keys:    bson.D{{Key: "company_name", Value: 1}},
			Options: options.Index().SetName("idx_users_company"),
		},
	})
}

func ensureRegistrations(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("registrations")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Duplicate-email check ignores rejected applications.
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_reg_email_status"),
		},
		// Admin review list, newest first.
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_reg_createdat"),
		},
		// Pending count on the stats endpoint.
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_reg_status"),
		},
	})
}

func ensureInquiries(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("inquiries")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_inquiries_createdat"),
		},
	})
}

func ensureOutbox(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("email_outbox")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Dispatcher claims the oldest due task.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "next_attempt_at", Value: 1}},
			Options: options.Index().SetName("idx_outbox_status_next"),
		},
		// Purge of delivered mail and stuck-task recovery.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "updated_at", Value: 1}},
			Options: options.Index().SetName("idx_outbox_status_updated"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("audit_events")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_actor_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_category_type_timestamp"),
		},
	})
}
