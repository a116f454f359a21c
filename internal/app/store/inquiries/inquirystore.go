// internal/app/store/inquiries/inquirystore.go
package inquirystore

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
	// ErrNotFound is returned when no inquiry matches.
	ErrNotFound  = errors.New("inquiry not found")
	errBadStatus = errors.New("invalid inquiry status")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("inquiries")}
}

// Create inserts an inquiry. An empty status defaults to Just Inquiry.
func (s *Store) Create(ctx context.Context, in models.Inquiry) (models.Inquiry, error) {
	if in.ID.IsZero() {
		in.ID = primitive.NewObjectID()
	}
	in.Name = normalize.Name(in.Name)
	in.Email = normalize.Email(in.Email)
	in.Business = normalize.Text(in.Business)
	if in.Status == "" {
		in.Status = models.InquiryJustInquiry
	}
	if !models.ValidInquiryStatus(in.Status) {
		return models.Inquiry{}, errBadStatus
	}

	now := time.Now().UTC()
	in.CreatedAt = now
	in.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, in); err != nil {
		return models.Inquiry{}, err
	}
	return in, nil
}

// List returns inquiries newest first.
func (s *Store) List(ctx context.Context) ([]models.Inquiry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Inquiry, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus sets the follow-up status. Returns ErrNotFound if absent.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if !models.ValidInquiryStatus(status) {
		return errBadStatus
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
