// Package statsqueries provides read-only aggregate counts for the admin dashboard.
package statsqueries

import (
	"context"
	"time"

	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// NewMemberWindow is how far back a member counts as new.
const NewMemberWindow = 7 * 24 * time.Hour

// MemberStats holds the dashboard counts.
type MemberStats struct {
	TotalMembers         int64     `json:"totalMembers"`
	NewMembers           int64     `json:"newMembers"`
	PendingRegistrations int64     `json:"pendingRegistrations"`
	CorporateMembers     int64     `json:"corporateMembers"`
	IndividualMembers    int64     `json:"individualMembers"`
	Timestamp            time.Time `json:"timestamp"`
}

// CountMemberStats runs the five counts concurrently. now anchors both the
// new-member window and the returned timestamp.
func CountMemberStats(ctx context.Context, db *mongo.Database, now time.Time) (MemberStats, error) {
	users := db.Collection("users")
	regs := db.Collection("registrations")
	out := MemberStats{Timestamp: now}

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, c *mongo.Collection, filter bson.M) {
		g.Go(func() error {
			n, err := c.CountDocuments(gctx, filter)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}

	count(&out.TotalMembers, users, bson.M{"role": models.RoleMember})
	count(&out.NewMembers, users, bson.M{
		"role":       models.RoleMember,
		"created_at": bson.M{"$gte": now.Add(-NewMemberWindow)},
	})
	count(&out.PendingRegistrations, regs, bson.M{"status": models.RegistrationPending})
	count(&out.CorporateMembers, users, bson.M{
		"role":            models.RoleMember,
		"membership_type": models.MembershipCorporate,
	})
	count(&out.IndividualMembers, users, bson.M{
		"role":            models.RoleMember,
		"membership_type": models.MembershipIndividual,
	})

	if err := g.Wait(); err != nil {
		return MemberStats{}, err
	}
	return out, nil
}
