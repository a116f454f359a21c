// internal/domain/models/registration.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registration statuses. The lowercase "rejected" matches the value stored
// by earlier deployments and is kept for compatibility.
const (
	RegistrationPending  = "Pending"
	RegistrationApproved = "Approved"
	RegistrationRejected = "rejected"
)

// Membership types as submitted on the application form.
const (
	MembershipCorporate       = "Corporate Member"
	MembershipIndividual      = "Individual Member"
	MembershipSpecialHonorary = "Special Honorary Member"
	MembershipHonorary        = "Honorary Member"
)

// Registration is a membership application awaiting (or past) review.
// Status moves Pending -> Approved or Pending -> rejected, never back.
// UniqueID and MemberID are set exactly once, on approval.
type Registration struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"_id"`

	Profile `bson:",inline"`

	Consent            bool   `bson:"consent" json:"consent"`
	Status             string `bson:"status" json:"status"`
	MembershipValidity string `bson:"membership_validity,omitempty" json:"membershipValidity,omitempty"`
	UniqueID           string `bson:"unique_id,omitempty" json:"uniqueId,omitempty"`
	MemberID           string `bson:"member_id,omitempty" json:"memberId,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
