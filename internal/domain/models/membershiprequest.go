// internal/domain/models/membershiprequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership request statuses.
const (
	MembershipPending  = "pending"
	MembershipApproved = "approved"
	MembershipDenied   = "denied"
)

// MembershipRequest is an already-affiliated member asking for a duration
// change. Distinct from JoinRequest, which establishes the affiliation.
type MembershipRequest struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID          primitive.ObjectID `bson:"member_id" json:"member_id"`
	GymID             primitive.ObjectID `bson:"gym_id" json:"gym_id"`
	RequestedDuration DurationCode       `bson:"requested_duration" json:"requested_duration"`
	Status            string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
