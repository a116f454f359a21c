// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Social holds a member's social profile links.
type Social struct {
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
}

// User is an approved member or an administrator.
//
// Members are created only by approving a Registration; the profile fields
// are copied from it at that moment. UniqueID and MemberID are assigned once
// and never change. Admin accounts carry neither.
type User struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"_id"`

	Profile `bson:",inline"`

	ResidencePhone string  `bson:"residence_phone,omitempty" json:"residencePhone,omitempty"`
	CompanyBrief   string  `bson:"company_brief,omitempty" json:"companyBrief,omitempty"`
	About          string  `bson:"about,omitempty" json:"about,omitempty"`
	Logo           BlobRef `bson:"logo,omitempty" json:"logo,omitempty"`
	Social         Social  `bson:"social" json:"social"`

	Role               string `bson:"role" json:"role"`
	UniqueID           string `bson:"unique_id,omitempty" json:"uniqueId,omitempty"`
	MemberID           string `bson:"member_id,omitempty" json:"memberId,omitempty"`
	MembershipValidity string `bson:"membership_validity,omitempty" json:"membershipValidity,omitempty"`

	// PasswordHash is a bcrypt hash. It never leaves the process.
	PasswordHash string `bson:"password_hash" json:"-"`

	RegistrationID *primitive.ObjectID `bson:"registration_id,omitempty" json:"registrationId,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsAdmin reports whether u holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
