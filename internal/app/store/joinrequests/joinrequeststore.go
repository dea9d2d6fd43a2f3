// internal/app/store/joinrequests/joinrequeststore.go
package joinrequeststore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	// ErrDuplicatePending means the user already has an open request at this gym.
	ErrDuplicatePending = errors.New("a pending join request already exists for this user and gym")
	// ErrAlreadyResolved means the request left the pending state before this
	// resolve won the race.
	ErrAlreadyResolved = errors.New("join request has already been resolved")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("join_requests")}
}

// EnsureIndexes creates the partial unique index that enforces at most one
// pending request per (user, gym) pair, plus the gym listing index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "gym_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.JoinPending}),
		},
		{
			Keys: bson.D{{Key: "gym_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Store) Create(ctx context.Context, jr models.JoinRequest) (models.JoinRequest, error) {
	jr.ID = primitive.NewObjectID()
	jr.Status = models.JoinPending
	jr.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, jr)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.JoinRequest{}, ErrDuplicatePending
		}
		return models.JoinRequest{}, err
	}
	return jr, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.JoinRequest, error) {
	var jr models.JoinRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&jr)
	if err != nil {
		return models.JoinRequest{}, err
	}
	return jr, nil
}

// ListPendingByGym returns the open requests for a gym in arrival order.
// When role is non-empty only requests from that role are returned, which is
// how trainer reviewers see a member-only queue.
func (s *Store) ListPendingByGym(ctx context.Context, gymID primitive.ObjectID, role string) ([]models.JoinRequest, error) {
	filter := bson.M{"gym_id": gymID, "status": models.JoinPending}
	if role != "" {
		filter["user_role"] = role
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.JoinRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Resolve moves a pending request into a terminal status. The filter matches
// on the pending status so only one concurrent caller can win; the loser gets
// ErrAlreadyResolved if the document exists, mongo.ErrNoDocuments otherwise.
func (s *Store) Resolve(ctx context.Context, id primitive.ObjectID, status string) (models.JoinRequest, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var jr models.JoinRequest
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.JoinPending},
		bson.M{"$set": bson.M{"status": status}},
		opts).Decode(&jr)
	if err == mongo.ErrNoDocuments {
		// Distinguish "gone" from "already settled".
		n, cntErr := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if cntErr != nil {
			return models.JoinRequest{}, cntErr
		}
		if n > 0 {
			return models.JoinRequest{}, ErrAlreadyResolved
		}
		return models.JoinRequest{}, mongo.ErrNoDocuments
	}
	if err != nil {
		return models.JoinRequest{}, err
	}
	return jr, nil
}
