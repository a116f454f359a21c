// internal/app/store/outbox/outboxstore.go
package outboxstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/normalize"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no task matches.
	ErrNotFound = errors.New("email task not found")
	// ErrNotFailed is returned when retrying a task that has not failed.
	ErrNotFailed = errors.New("email task has not failed")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("email_outbox")}
}

// Enqueue stores a pending task due immediately.
func (s *Store) Enqueue(ctx context.Context, t models.EmailTask) (models.EmailTask, error) {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	t.To = normalize.Email(t.To)
	t.Status = models.EmailPending
	t.Attempts = 0
	t.LastError = ""
	t.NextAttemptAt = now
	t.CreatedAt = now
	t.UpdatedAt = now
	t.SentAt = nil

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.EmailTask{}, err
	}
	return t, nil
}

// ClaimDue moves the oldest due pending task to sending and returns it,
// counting the attempt. Returns nil when nothing is due.
func (s *Store) ClaimDue(ctx context.Context, now time.Time) (*models.EmailTask, error) {
	filter := bson.M{
		"status":          models.EmailPending,
		"next_attempt_at": bson.M{"$lte": now},
	}
	update := bson.M{
		"$set": bson.M{"status": models.EmailSending, "updated_at": now},
		"$inc": bson.M{"attempts": 1},
	}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "next_attempt_at", Value: 1}}).
		SetReturnDocument(options.After)

	var t models.EmailTask
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// MarkSent records delivery and drops the message bodies.
func (s *Store) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":   bson.M{"status": models.EmailSent, "sent_at": now, "updated_at": now, "last_error": ""},
		"$unset": bson.M{"text_body": "", "html_body": ""},
	})
	return err
}

// Reschedule returns a task to pending, due at next.
func (s *Store) Reschedule(ctx context.Context, id primitive.ObjectID, lastErr string, next time.Time) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":          models.EmailPending,
		"last_error":      lastErr,
		"next_attempt_at": next,
		"updated_at":      time.Now().UTC(),
	}})
	return err
}

// MarkFailed parks a task that exhausted its attempts.
func (s *Store) MarkFailed(ctx context.Context, id primitive.ObjectID, lastErr string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     models.EmailFailed,
		"last_error": lastErr,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// List returns tasks in status (all when empty), newest first, without bodies.
func (s *Store) List(ctx context.Context, status string, limit int64) ([]models.EmailTask, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().
		SetProjection(bson.M{"text_body": 0, "html_body": 0}).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.EmailTask, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Retry requeues a failed task with a fresh attempt budget.
func (s *Store) Retry(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.EmailFailed},
		bson.M{"$set": bson.M{
			"status":          models.EmailPending,
			"attempts":        0,
			"next_attempt_at": now,
			"updated_at":      now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrNotFailed
}

// ResetStuck returns tasks left in sending since before cutoff to pending.
// A process that died mid-send leaves such tasks behind.
func (s *Store) ResetStuck(ctx context.Context, cutoff time.Time) (int64, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateMany(ctx,
		bson.M{"status": models.EmailSending, "updated_at": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{"status": models.EmailPending, "next_attempt_at": now, "updated_at": now}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// PurgeSent deletes delivered tasks sent before cutoff.
func (s *Store) PurgeSent(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"status": models.EmailSent, "sent_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
