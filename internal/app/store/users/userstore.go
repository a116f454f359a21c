// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/normalize"
	"github.com/dalemusser/memberhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "admin"|"member"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// withoutPassword is the projection used for every read that may leave the process.
var withoutPassword = bson.M{"password_hash": 0}

// GetByID loads a user by ObjectID without the password hash.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := s.c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetWithPassword loads a user including the password hash. Only the
// login and change-password paths use it.
func (s *Store) GetWithPassword(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email, including the password
// hash. Returns ErrNotFound if absent.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// EmailExists reports whether any user holds email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// Create inserts a new user after normalizing fields. The caller supplies
// identifiers and the password hash.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)

	switch u.Role {
	case models.RoleAdmin, models.RoleMember:
		// ok
	default:
		return models.User{}, errBadRole
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Delete removes user id. Returns ErrNotFound if no such user exists.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFilter selects directory rows.
type ListFilter struct {
	Query string // case-insensitive substring over name, mobile, unique_id, member_id
	Skip  int64
	Limit int64
}

func directoryFilter(q string) bson.M {
	filter := bson.M{"role": bson.M{"$ne": models.RoleAdmin}}
	if q = strings.TrimSpace(q); q != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": rx},
			bson.M{"mobile": rx},
			bson.M{"unique_id": rx},
			bson.M{"member_id": rx},
		}
	}
	return filter
}

// List returns non-admin users newest first, without password hashes.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.User, error) {
	opts := options.Find().
		SetProjection(withoutPassword).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(f.Skip)
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := s.c.Find(ctx, directoryFilter(f.Query), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.User, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of non-admin users matching q.
func (s *Store) Count(ctx context.Context, q string) (int64, error) {
	return s.c.CountDocuments(ctx, directoryFilter(q))
}

// fieldPaths maps request field names to stored paths.
var fieldPaths = map[string]string{
	"name":                    "name",
	"email":                   "email",
	"companyName":             "company_name",
	"profession":              "profession",
	"nationality":             "nationality",
	"membershipType":          "membership_type",
	"mobile":                  "mobile",
	"designation":             "designation",
	"businessActivity":        "business_activity",
	"sponsorName":             "sponsor_name",
	"passportNumber":          "passport_number",
	"civilId":                 "civil_id",
	"address":                 "address",
	"officePhone":             "office_phone",
	"residencePhone":          "residence_phone",
	"alternateMobile":         "alternate_mobile",
	"alternateEmail":          "alternate_email",
	"industrySector":          "industry_sector",
	"alternateIndustrySector": "alternate_industry_sector",
	"companyAddress":          "company_address",
	"companyWebsite":          "company_website",
	"benefitFromOrg":          "benefit_from_org",
	"contributeToOrg":         "contribute_to_org",
	"proposer1":               "proposer1",
	"proposer2":               "proposer2",
	"membershipValidity":      "membership_validity",
	"photo":                   "photo",
	"logo":                    "logo",
	"companyBrief":            "company_brief",
	"about":                   "about",
	"social.linkedin":         "social.linkedin",
	"social.instagram":        "social.instagram",
	"social.twitter":          "social.twitter",
	"social.facebook":         "social.facebook",
}

// FieldPath returns the stored path for a request field name.
func FieldPath(field string) (string, bool) {
	p, ok := fieldPaths[field]
	return p, ok
}

// UpdateFields sets the given request fields on user id. Unknown fields are
// ignored. Returns ErrNotFound if the user is absent and ErrDuplicateEmail if
// an email change collides.
func (s *Store) UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]string) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		path, ok := fieldPaths[k]
		if !ok {
			continue
		}
		if path == "email" {
			v = normalize.Email(v)
		}
		set[path] = v
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPasswordHash replaces the stored hash.
func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetValidityByRegistration mirrors a registration's validity year onto the
// member created from it, if any. Reports whether a member was updated.
func (s *Store) SetValidityByRegistration(ctx context.Context, regID primitive.ObjectID, year string) (bool, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"registration_id": regID}, bson.M{"$set": bson.M{
		"membership_validity": year,
		"updated_at":          time.Now().UTC(),
	}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// NamesByID returns the display names of the given users keyed by id.
// Unknown ids are absent from the map.
func (s *Store) NamesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1, "name": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u struct {
			ID   primitive.ObjectID `bson:"_id"`
			Name string             `bson:"name"`
		}
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u.Name
	}
	return out, cur.Err()
}

// AdminExists reports whether at least one admin account exists.
func (s *Store) AdminExists(ctx context.Context) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"role": models.RoleAdmin}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// maxNumeric aggregates the largest integer held in field among values
// matching pattern, after dropping the first skip characters. Returns 0
// when nothing matches.
func (s *Store) maxNumeric(ctx context.Context, field, pattern string, skip int) (int64, error) {
	digits := any("$" + field)
	if skip > 0 {
		digits = bson.M{"$substrCP": bson.A{"$" + field, skip, bson.M{"$subtract": bson.A{bson.M{"$strLenCP": "$" + field}, skip}}}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{field: primitive.Regex{Pattern: pattern}}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"max": bson.M{"$max": bson.M{"$toLong": digits}},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Max int64 `bson:"max"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Max, nil
}

// MaxSerial returns the largest unique_id made of exactly five digits, or 0.
// Values of any other shape are legacy data and never move the counter.
func (s *Store) MaxSerial(ctx context.Context) (int64, error) {
	return s.maxNumeric(ctx, "unique_id", `^[0-9]{5}$`, 0)
}

// MaxMemberNumber returns the largest number used after prefix in
// member_id (e.g. prefix "C" and "C10042" yield 10042), or 0.
func (s *Store) MaxMemberNumber(ctx context.Context, prefix string) (int64, error) {
	return s.maxNumeric(ctx, "member_id", "^"+regexp.QuoteMeta(prefix)+`[0-9]+$`, len(prefix))
}
