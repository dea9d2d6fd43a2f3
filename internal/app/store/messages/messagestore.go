// internal/app/store/messages/messagestore.go
package messagestore

import (
	"context"
	"time"

	"github.com/easyfittrack/fittrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("messages")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "gym_id", Value: 1}, {Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "created_at", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "status", Value: 1}},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Store) Insert(ctx context.Context, m models.Message) (models.Message, error) {
	m.ID = primitive.NewObjectID()
	m.Status = models.MessageSent
	m.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, m)
	if err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// Conversation returns every message between two users at a gym in both
// directions, oldest first.
func (s *Store) Conversation(ctx context.Context, gymID, userA, userB primitive.ObjectID) ([]models.Message, error) {
	filter := bson.M{
		"gym_id": gymID,
		"$or": []bson.M{
			{"sender_id": userA, "receiver_id": userB},
			{"sender_id": userB, "receiver_id": userA},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flips every sent message from sender to receiver to read and
// reports how many were flipped. The filter deliberately omits the gym: the
// same pair never converses across gyms, and a stale affiliation must not
// strand unread messages.
func (s *Store) MarkRead(ctx context.Context, senderID, receiverID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"sender_id":   senderID,
			"receiver_id": receiverID,
			"status":      models.MessageSent,
		},
		bson.M{"$set": bson.M{"status": models.MessageRead}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// UnreadCounts groups the receiver's unseen messages by sender.
func (s *Store) UnreadCounts(ctx context.Context, receiverID primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"receiver_id": receiverID, "status": models.MessageSent}}},
		{{Key: "$group", Value: bson.M{"_id": "$sender_id", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	counts := make(map[primitive.ObjectID]int64)
	for cur.Next(ctx) {
		var row struct {
			SenderID primitive.ObjectID `bson:"_id"`
			Count    int64              `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.SenderID] = row.Count
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
