// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message statuses. The transition is monotonic: sent -> read, never back.
const (
	MessageSent = "sent"
	MessageRead = "read"
)

// Message is one chat message inside a gym's room. Immutable after insert
// except for Status.
type Message struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID     primitive.ObjectID `bson:"sender_id" json:"sender_id"`
	SenderRole   string             `bson:"sender_role" json:"sender_role"` // owner | trainer | member
	ReceiverID   primitive.ObjectID `bson:"receiver_id" json:"receiver_id"`
	ReceiverRole string             `bson:"receiver_role" json:"receiver_role"`
	GymID        primitive.ObjectID `bson:"gym_id" json:"gym_id"`
	Body         string             `bson:"body" json:"body"`
	Status       string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
