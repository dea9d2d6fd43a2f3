// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles recognized by the API. Owners act for the gym itself; trainers and
// members are affiliated people.
const (
	RoleOwner   = "owner"
	RoleTrainer = "trainer"
	RoleMember  = "member"
)

// IsPersonRole reports whether role names a person variant that can hold a
// gym affiliation (as opposed to the owner, who IS the gym).
func IsPersonRole(role string) bool {
	return role == RoleTrainer || role == RoleMember
}

// User represents trainers and members.
//
// NOTE:
//   - GymID is the single source of truth for affiliation. A nil GymID
//     means unaffiliated. The gym's member/trainer ID lists mirror it and
//     are maintained by the lifecycle engine only.
type User struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName   string              `bson:"full_name" json:"full_name"`
	FullNameCI string              `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email      string              `bson:"email" json:"email"`
	Role       string              `bson:"role" json:"role"` // trainer | member
	GymID      *primitive.ObjectID `bson:"gym_id,omitempty" json:"gym_id,omitempty"`
	Membership *Membership         `bson:"membership,omitempty" json:"membership,omitempty"` // members only

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Membership is the value object attached to an affiliated member. EndDate
// is always a pure function of (StartDate, Duration).
type Membership struct {
	Duration  DurationCode `bson:"duration" json:"duration"`
	StartDate time.Time    `bson:"start_date" json:"start_date"`
	EndDate   time.Time    `bson:"end_date" json:"end_date"`
}

// Expired reports whether the membership has lapsed at instant now.
func (m Membership) Expired(now time.Time) bool {
	return now.After(m.EndDate)
}
