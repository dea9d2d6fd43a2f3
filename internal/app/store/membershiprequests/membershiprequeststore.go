// internal/app/store/membershiprequests/membershiprequeststore.go
package membershiprequeststore

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
	ErrDuplicatePending = errors.New("a pending membership request already exists for this member and gym")
	ErrAlreadyResolved  = errors.New("membership request has already been resolved")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("membership_requests")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "member_id", Value: 1}, {Key: "gym_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.MembershipPending}),
		},
		{
			Keys: bson.D{{Key: "gym_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Store) Create(ctx context.Context, mr models.MembershipRequest) (models.MembershipRequest, error) {
	mr.ID = primitive.NewObjectID()
	mr.Status = models.MembershipPending
	mr.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, mr)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.MembershipRequest{}, ErrDuplicatePending
		}
		return models.MembershipRequest{}, err
	}
	return mr, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.MembershipRequest, error) {
	var mr models.MembershipRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&mr)
	if err != nil {
		return models.MembershipRequest{}, err
	}
	return mr, nil
}

// ListPendingByGym returns the open duration requests for a gym, newest first.
func (s *Store) ListPendingByGym(ctx context.Context, gymID primitive.ObjectID) ([]models.MembershipRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"gym_id": gymID, "status": models.MembershipPending}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.MembershipRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Resolve moves a pending request into a terminal status with the same
// conditional-update race handling as join requests.
func (s *Store) Resolve(ctx context.Context, id primitive.ObjectID, status string) (models.MembershipRequest, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mr models.MembershipRequest
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.MembershipPending},
		bson.M{"$set": bson.M{"status": status}},
		opts).Decode(&mr)
	if err == mongo.ErrNoDocuments {
		n, cntErr := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if cntErr != nil {
			return models.MembershipRequest{}, cntErr
		}
		if n > 0 {
			return models.MembershipRequest{}, ErrAlreadyResolved
		}
		return models.MembershipRequest{}, mongo.ErrNoDocuments
	}
	if err != nil {
		return models.MembershipRequest{}, err
	}
	return mr, nil
}

// ApproveMatching flips a pending request to approved when its requested
// duration matches the one an owner just granted directly. Reports whether a
// request was reconciled this way.
func (s *Store) ApproveMatching(ctx context.Context, memberID, gymID primitive.ObjectID, duration models.DurationCode) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"member_id":          memberID,
			"gym_id":             gymID,
			"requested_duration": duration,
			"status":             models.MembershipPending,
		},
		bson.M{"$set": bson.M{"status": models.MembershipApproved}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// DeletePendingByMember drops any open duration requests a member left behind,
// used when the member is removed from the gym.
func (s *Store) DeletePendingByMember(ctx context.Context, memberID, gymID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{
		"member_id": memberID,
		"gym_id":    gymID,
		"status":    models.MembershipPending,
	})
	return err
}
