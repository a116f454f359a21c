// internal/app/store/registrations/registrationstore.go
package registrationstore

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
	// ErrNotFound is returned when no registration matches.
	ErrNotFound = errors.New("registration not found")
	// ErrStatusChanged is returned when a conditional status update finds the
	// registration no longer Pending.
	ErrStatusChanged = errors.New("registration is no longer pending")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("registrations")}
}

// Create inserts a Pending registration and returns it with ID and timestamps set.
func (s *Store) Create(ctx context.Context, reg models.Registration) (models.Registration, error) {
	if reg.ID.IsZero() {
		reg.ID = primitive.NewObjectID()
	}
	reg.Email = normalize.Email(reg.Email)
	reg.Status = models.RegistrationPending
	reg.UniqueID = ""
	reg.MemberID = ""

	now := time.Now().UTC()
	reg.CreatedAt = now
	reg.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, reg); err != nil {
		return models.Registration{}, err
	}
	return reg, nil
}

// GetByID loads a registration. Returns ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Registration, error) {
	var reg models.Registration
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&reg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

// List returns every registration, newest first.
func (s *Store) List(ctx context.Context) ([]models.Registration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Registration, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExistsActiveEmail reports whether a registration that was not rejected
// already uses email.
func (s *Store) ExistsActiveEmail(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"email":  normalize.Email(email),
		"status": bson.M{"$ne": models.RegistrationRejected},
	}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// CountPending returns the number of registrations awaiting review.
func (s *Store) CountPending(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"status": models.RegistrationPending})
}

// transition flips status from Pending to next, setting extra fields. The
// filter on status makes the flip a compare-and-set.
func (s *Store) transition(ctx context.Context, id primitive.ObjectID, next string, extra bson.M) error {
	set := bson.M{"status": next, "updated_at": time.Now().UTC()}
	for k, v := range extra {
		set[k] = v
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.RegistrationPending},
		bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// Distinguish a missing registration from one already decided.
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrStatusChanged
}

// MarkApproved records the assigned identifiers and flips a Pending
// registration to Approved. Returns ErrStatusChanged if it is no longer Pending.
func (s *Store) MarkApproved(ctx context.Context, id primitive.ObjectID, uniqueID, memberID string) error {
	return s.transition(ctx, id, models.RegistrationApproved, bson.M{
		"unique_id": uniqueID,
		"member_id": memberID,
	})
}

// MarkRejected flips a Pending registration to rejected.
func (s *Store) MarkRejected(ctx context.Context, id primitive.ObjectID) error {
	return s.transition(ctx, id, models.RegistrationRejected, nil)
}

// SetMembershipValidity updates only the validity year, regardless of status.
func (s *Store) SetMembershipValidity(ctx context.Context, id primitive.ObjectID, year string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"membership_validity": year,
		"updated_at":          time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
