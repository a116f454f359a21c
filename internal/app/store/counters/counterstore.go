// internal/app/store/counters/counterstore.go
package counterstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Counter names.
const (
	GlobalSerial = "global_serial"
)

// MemberSeq returns the counter name for a member-code prefix.
func MemberSeq(prefix string) string { return "member_seq_" + prefix }

// Counter is one named sequence.
type Counter struct {
	Name      string    `bson:"_id"`
	Seq       int64     `bson:"seq"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("counters")}
}

// Next atomically advances counter name and returns the new value, which is
// never below floor. A missing counter is created. Concurrent callers always
// receive distinct values.
func (s *Store) Next(ctx context.Context, name string, floor int64) (int64, error) {
	// seq = max(seq, floor-1) + 1, evaluated server-side in one update.
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"seq": bson.M{"$add": bson.A{
				bson.M{"$max": bson.A{
					bson.M{"$ifNull": bson.A{"$seq", int64(0)}},
					floor - 1,
				}},
				int64(1),
			}},
			"updated_at": "$$NOW",
		}}},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c Counter
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": name}, update, opts).Decode(&c)
	if mongo.IsDuplicateKeyError(err) {
		// Two upserts raced to create the counter; the loser retries as an update.
		err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": name}, update, opts).Decode(&c)
	}
	if err != nil {
		return 0, err
	}
	return c.Seq, nil
}

// RaiseTo lifts counter name to at least value without ever lowering it.
// Used at startup to align counters with identifiers already in use.
func (s *Store) RaiseTo(ctx context.Context, name string, value int64) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{
			"$max": bson.M{"seq": value},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true))
	return err
}

// Current returns the last value issued by counter name, or 0 if it has
// never been used.
func (s *Store) Current(ctx context.Context, name string) (int64, error) {
	var c Counter
	err := s.c.FindOne(ctx, bson.M{"_id": name}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return c.Seq, nil
}
