// internal/domain/models/emailtask.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Email task kinds.
const (
	EmailRegistrationReceived = "registration_received"
	EmailMemberCredentials    = "member_credentials"
)

// Email task states.
const (
	EmailPending = "pending"
	EmailSending = "sending"
	EmailSent    = "sent"
	EmailFailed  = "failed"
)

// EmailTask is a queued outbound message. Bodies are cleared once the
// message is delivered because credential mail carries a plaintext password.
type EmailTask struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Kind           string              `bson:"kind" json:"kind"`
	To             string              `bson:"to" json:"to"`
	Subject        string              `bson:"subject" json:"subject"`
	TextBody       string              `bson:"text_body,omitempty" json:"-"`
	HTMLBody       string              `bson:"html_body,omitempty" json:"-"`
	Status         string              `bson:"status" json:"status"`
	Attempts       int                 `bson:"attempts" json:"attempts"`
	LastError      string              `bson:"last_error,omitempty" json:"lastError,omitempty"`
	NextAttemptAt  time.Time           `bson:"next_attempt_at" json:"nextAttemptAt"`
	RegistrationID *primitive.ObjectID `bson:"registration_id,omitempty" json:"registrationId,omitempty"`
	CreatedAt      time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updated_at" json:"updatedAt"`
	SentAt         *time.Time          `bson:"sent_at,omitempty" json:"sentAt,omitempty"`
}
