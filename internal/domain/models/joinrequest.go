// internal/domain/models/joinrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Join request statuses. A request is terminal once accepted or denied and
// is never revived.
const (
	JoinPending  = "pending"
	JoinAccepted = "accepted"
	JoinDenied   = "denied"
)

// JoinRequest is a person's application to affiliate with a gym. Duration is
// required when the requester is a member and absent for trainers.
type JoinRequest struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	UserRole string             `bson:"user_role" json:"user_role"` // trainer | member
	GymID    primitive.ObjectID `bson:"gym_id" json:"gym_id"`
	Duration DurationCode       `bson:"duration,omitempty" json:"duration,omitempty"`
	Status   string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Terminal reports whether the request has been resolved.
func (j JoinRequest) Terminal() bool {
	return j.Status != JoinPending
}
