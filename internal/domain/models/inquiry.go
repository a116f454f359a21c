// internal/domain/models/inquiry.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Inquiry follow-up states.
const (
	InquiryJustInquiry = "Just Inquiry"
	InquiryPlanning    = "Planning to Register"
	InquiryRegistered  = "Registered"
)

// InquiryStatuses lists the allowed inquiry states in display order.
var InquiryStatuses = []string{InquiryJustInquiry, InquiryPlanning, InquiryRegistered}

// ValidInquiryStatus reports whether s is one of InquiryStatuses.
func ValidInquiryStatus(s string) bool {
	for _, v := range InquiryStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Inquiry is a lightweight contact request from a prospective member.
type Inquiry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Business  string             `bson:"business,omitempty" json:"business,omitempty"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}
