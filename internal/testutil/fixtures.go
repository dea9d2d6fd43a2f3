package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateGym creates a test gym with the given name.
// Returns the created gym with its generated ID.
func (f *Fixtures) CreateGym(ctx context.Context, name string) models.Gym {
	f.t.Helper()

	now := time.Now().UTC()
	gym := models.Gym{
		ID:             primitive.NewObjectID(),
		Name:           name,
		NameCI:         text.Fold(name),
		Address:        "1 Test Street",
		City:           "Test City",
		CityCI:         text.Fold("Test City"),
		OwnerName:      "Test Owner",
		OwnerEmail:     "owner@test.com",
		MemberIDs:      []primitive.ObjectID{},
		TrainerIDs:     []primitive.ObjectID{},
		JoinRequestIDs: []primitive.ObjectID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := f.db.Collection("gyms").InsertOne(ctx, gym)
	if err != nil {
		f.t.Fatalf("failed to create test gym: %v", err)
	}

	return gym
}

// CreateUser creates a test user with the given parameters.
// Pass a nil gymID for unaffiliated users.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string, gymID *primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		Role:       role,
		GymID:      gymID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateOwner creates a test owner user for the given gym.
func (f *Fixtures) CreateOwner(ctx context.Context, fullName, email string, gymID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleOwner, &gymID)
}

// CreateTrainer creates a test trainer user affiliated with the given gym.
func (f *Fixtures) CreateTrainer(ctx context.Context, fullName, email string, gymID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleTrainer, &gymID)
}

// CreateMember creates a test member user affiliated with the given gym.
func (f *Fixtures) CreateMember(ctx context.Context, fullName, email string, gymID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleMember, &gymID)
}

// CreateMemberWithMembership creates a member with an active membership of the
// given duration starting now.
func (f *Fixtures) CreateMemberWithMembership(ctx context.Context, fullName, email string, gymID primitive.ObjectID, duration models.DurationCode) models.User {
	f.t.Helper()

	user := f.CreateMember(ctx, fullName, email, gymID)
	m := models.NewMembership(duration, time.Now().UTC())
	user.Membership = &m

	_, err := f.db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"membership": m}})
	if err != nil {
		f.t.Fatalf("failed to set test membership: %v", err)
	}

	return user
}

// CreateJoinRequest creates a pending join request for the given user and gym.
func (f *Fixtures) CreateJoinRequest(ctx context.Context, userID primitive.ObjectID, userRole string, gymID primitive.ObjectID, duration models.DurationCode) models.JoinRequest {
	f.t.Helper()

	jr := models.JoinRequest{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		UserRole:  userRole,
		GymID:     gymID,
		Duration:  duration,
		Status:    models.JoinPending,
		CreatedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("join_requests").InsertOne(ctx, jr)
	if err != nil {
		f.t.Fatalf("failed to create test join request: %v", err)
	}

	return jr
}

// CreateMembershipRequest creates a pending membership duration request.
func (f *Fixtures) CreateMembershipRequest(ctx context.Context, memberID, gymID primitive.ObjectID, duration models.DurationCode) models.MembershipRequest {
	f.t.Helper()

	mr := models.MembershipRequest{
		ID:                primitive.NewObjectID(),
		MemberID:          memberID,
		GymID:             gymID,
		RequestedDuration: duration,
		Status:            models.MembershipPending,
		CreatedAt:         time.Now().UTC(),
	}

	_, err := f.db.Collection("membership_requests").InsertOne(ctx, mr)
	if err != nil {
		f.t.Fatalf("failed to create test membership request: %v", err)
	}

	return mr
}

// CreateMessage creates a sent message between two users at a gym.
func (f *Fixtures) CreateMessage(ctx context.Context, senderID, receiverID, gymID primitive.ObjectID, body string) models.Message {
	f.t.Helper()

	msg := models.Message{
		ID:         primitive.NewObjectID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		GymID:      gymID,
		Body:       body,
		Status:     models.MessageSent,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := f.db.Collection("messages").InsertOne(ctx, msg)
	if err != nil {
		f.t.Fatalf("failed to create test message: %v", err)
	}

	return msg
}
