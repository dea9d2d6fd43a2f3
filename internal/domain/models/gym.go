// internal/domain/models/gym.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gym includes case/diacritic-insensitive fields for search/sort.
//
// MemberIDs and TrainerIDs mirror the users' gym_id pointers and are only
// mutated by the lifecycle engine under transactional discipline.
// JoinRequestIDs records arrival order of requests for display; it is never
// consulted for tie-break logic.
type Gym struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Name       string             `bson:"name" json:"name"`
	NameCI     string             `bson:"name_ci" json:"-"`
	Address    string             `bson:"address" json:"address"`
	City       string             `bson:"city" json:"city"`
	CityCI     string             `bson:"city_ci" json:"-"`
	OwnerName  string             `bson:"owner_name" json:"owner_name"`
	OwnerEmail string             `bson:"owner_email" json:"owner_email"`

	MemberIDs      []primitive.ObjectID `bson:"member_ids" json:"member_ids"`
	TrainerIDs     []primitive.ObjectID `bson:"trainer_ids" json:"trainer_ids"`
	JoinRequestIDs []primitive.ObjectID `bson:"join_request_ids" json:"join_request_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
