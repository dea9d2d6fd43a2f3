// internal/app/store/gyms/gymstore.go
package gymstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateGym = errors.New("a gym with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("gyms")}
}

// EnsureIndexes creates lookup indexes for the gyms collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Store) Create(ctx context.Context, gym models.Gym) (models.Gym, error) {
	now := time.Now().UTC()
	gym.ID = primitive.NewObjectID()
	gym.NameCI = text.Fold(gym.Name)
	gym.CityCI = text.Fold(gym.City)
	if gym.MemberIDs == nil {
		gym.MemberIDs = []primitive.ObjectID{}
	}
	if gym.TrainerIDs == nil {
		gym.TrainerIDs = []primitive.ObjectID{}
	}
	if gym.JoinRequestIDs == nil {
		gym.JoinRequestIDs = []primitive.ObjectID{}
	}
	gym.CreatedAt = now
	gym.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, gym)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Gym{}, ErrDuplicateGym
		}
		return models.Gym{}, err
	}
	return gym, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Gym, error) {
	var gym models.Gym
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&gym)
	if err != nil {
		return models.Gym{}, err
	}
	return gym, nil
}

// List returns all gyms sorted by folded name, for the browse screen.
func (s *Store) List(ctx context.Context) ([]models.Gym, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var gyms []models.Gym
	if err := cur.All(ctx, &gyms); err != nil {
		return nil, err
	}
	return gyms, nil
}

// ProfileUpdate carries the owner-editable profile fields. Empty fields are
// left unchanged.
type ProfileUpdate struct {
	Name       string
	Address    string
	City       string
	OwnerName  string
	OwnerEmail string
}

// UpdateProfile modifies a gym's profile fields and refreshes UpdatedAt.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if upd.Name != "" {
		set["name"] = upd.Name
		set["name_ci"] = text.Fold(upd.Name)
	}
	if upd.Address != "" {
		set["address"] = upd.Address
	}
	if upd.City != "" {
		set["city"] = upd.City
		set["city_ci"] = text.Fold(upd.City)
	}
	if upd.OwnerName != "" {
		set["owner_name"] = upd.OwnerName
	}
	if upd.OwnerEmail != "" {
		set["owner_email"] = upd.OwnerEmail
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateGym
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AppendJoinRequest records a request's arrival on the gym's pending list.
// The list preserves insertion order for display only.
func (s *Store) AppendJoinRequest(ctx context.Context, gymID, requestID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": gymID},
		bson.M{
			"$push": bson.M{"join_request_ids": requestID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddMember places a user in the gym's member set. $addToSet keeps the set
// invariant even if the write is retried.
func (s *Store) AddMember(ctx context.Context, gymID, userID primitive.ObjectID) error {
	return s.addToSet(ctx, gymID, "member_ids", userID)
}

// AddTrainer places a user in the gym's trainer set.
func (s *Store) AddTrainer(ctx context.Context, gymID, userID primitive.ObjectID) error {
	return s.addToSet(ctx, gymID, "trainer_ids", userID)
}

// RemoveMember drops a user from the gym's member set.
func (s *Store) RemoveMember(ctx context.Context, gymID, userID primitive.ObjectID) error {
	return s.pull(ctx, gymID, "member_ids", userID)
}

// RemoveTrainer drops a user from the gym's trainer set.
func (s *Store) RemoveTrainer(ctx context.Context, gymID, userID primitive.ObjectID) error {
	return s.pull(ctx, gymID, "trainer_ids", userID)
}

func (s *Store) addToSet(ctx context.Context, gymID primitive.ObjectID, field string, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": gymID},
		bson.M{
			"$addToSet": bson.M{field: userID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Store) pull(ctx context.Context, gymID primitive.ObjectID, field string, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": gymID},
		bson.M{
			"$pull": bson.M{field: userID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
