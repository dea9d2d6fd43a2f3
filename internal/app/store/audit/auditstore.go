// internal/app/store/audit/auditstore.go
package auditstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories.
const (
	CategoryLifecycle = "lifecycle"
	CategoryMessaging = "messaging"
)

// Lifecycle event types.
const (
	EventJoinRequestSubmitted       = "join_request_submitted"
	EventJoinRequestAccepted        = "join_request_accepted"
	EventJoinRequestDenied          = "join_request_denied"
	EventMembershipRequestSubmitted = "membership_request_submitted"
	EventMembershipRequestApproved  = "membership_request_approved"
	EventMembershipRequestDenied    = "membership_request_denied"
	EventMembershipSet              = "membership_set"
	EventAffiliateRemoved           = "affiliate_removed"
	EventGymProfileUpdated          = "gym_profile_updated"
)

// Messaging event types.
const (
	EventMessageSent  = "message_sent"
	EventMessagesRead = "messages_read"
	EventRoomJoined   = "room_joined"
	EventRoomDeparted = "room_departed"
)

// Event is one immutable audit record. Detail is a short human-readable
// summary; Details carries structured context for queries.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Category  string             `bson:"category" json:"category"`
	EventType string             `bson:"event_type" json:"event_type"`
	ActorID   primitive.ObjectID `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	ActorRole string             `bson:"actor_role,omitempty" json:"actor_role,omitempty"`
	GymID     primitive.ObjectID `bson:"gym_id,omitempty" json:"gym_id,omitempty"`
	Detail    string             `bson:"detail" json:"detail"`
	Details   map[string]any     `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Filter narrows a Query. Zero-value fields are ignored.
type Filter struct {
	Category  string
	EventType string
	GymID     primitive.ObjectID
	ActorID   primitive.ObjectID
	Since     time.Time
	Limit     int64
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("event_logs")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "gym_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Store) Insert(ctx context.Context, e Event) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// Query returns matching events newest first.
func (s *Store) Query(ctx context.Context, f Filter) ([]Event, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.EventType != "" {
		filter["event_type"] = f.EventType
	}
	if !f.GymID.IsZero() {
		filter["gym_id"] = f.GymID
	}
	if !f.ActorID.IsZero() {
		filter["actor_id"] = f.ActorID
	}
	if !f.Since.IsZero() {
		filter["created_at"] = bson.M{"$gte": f.Since}
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
