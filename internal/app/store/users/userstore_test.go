package userstore_test

import (
	"errors"
	"testing"
	"time"

	userstore "github.com/easyfittrack/fittrack/internal/app/store/users"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"github.com/easyfittrack/fittrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{
		FullName: "Jordan Lee",
		Email:    "jordan@test.com",
		Role:     models.RoleMember,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if u.ID.IsZero() {
		t.Error("expected a generated ID")
	}
	if u.FullNameCI != "jordan lee" {
		t.Errorf("FullNameCI: got %q, want %q", u.FullNameCI, "jordan lee")
	}
	if u.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	if _, err := store.Create(ctx, models.User{FullName: "A", Email: "dup@test.com", Role: models.RoleMember}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, models.User{FullName: "B", Email: "dup@test.com", Role: models.RoleTrainer})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_GetByEmail_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.GetByEmail(ctx, "missing@test.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil for missing email, got %+v", u)
	}
}

func TestStore_GetByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fix := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gym := fix.CreateGym(ctx, "Iron Temple")
	a := fix.CreateMember(ctx, "A", "a@test.com", gym.ID)
	b := fix.CreateTrainer(ctx, "B", "b@test.com", gym.ID)
	fix.CreateMember(ctx, "C", "c@test.com", gym.ID)

	users, err := store.GetByIDs(ctx, []primitive.ObjectID{a.ID, b.ID})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	// Empty input short-circuits without touching the database.
	users, err = store.GetByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("GetByIDs(nil) failed: %v", err)
	}
	if users != nil {
		t.Errorf("expected nil result for empty input, got %v", users)
	}
}

func TestStore_AffiliationLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fix := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fix.CreateUser(ctx, "Jordan Lee", "jordan@test.com", models.RoleMember, nil)
	gymID := primitive.NewObjectID()

	if err := store.SetAffiliation(ctx, user.ID, gymID); err != nil {
		t.Fatalf("SetAffiliation failed: %v", err)
	}

	m := models.NewMembership(models.DurationOneMonth, time.Now().UTC())
	if err := store.SetMembership(ctx, user.ID, m); err != nil {
		t.Fatalf("SetMembership failed: %v", err)
	}

	got, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.GymID == nil || *got.GymID != gymID {
		t.Errorf("GymID: got %v, want %s", got.GymID, gymID.Hex())
	}
	if got.Membership == nil || got.Membership.Duration != models.DurationOneMonth {
		t.Errorf("Membership: got %+v, want duration %q", got.Membership, models.DurationOneMonth)
	}

	if err := store.ClearAffiliation(ctx, user.ID); err != nil {
		t.Fatalf("ClearAffiliation failed: %v", err)
	}
	got, err = store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID after clear failed: %v", err)
	}
	if got.GymID != nil {
		t.Errorf("expected GymID cleared, got %s", got.GymID.Hex())
	}
	if got.Membership != nil {
		t.Errorf("expected Membership cleared, got %+v", got.Membership)
	}
}

func TestStore_SetAffiliation_AlreadyAffiliated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fix := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	firstGym := primitive.NewObjectID()
	user := fix.CreateUser(ctx, "Jordan Lee", "jordan@test.com", models.RoleMember, &firstGym)

	err := store.SetAffiliation(ctx, user.ID, primitive.NewObjectID())
	if !errors.Is(err, userstore.ErrAlreadyAffiliated) {
		t.Fatalf("expected ErrAlreadyAffiliated, got %v", err)
	}

	// The existing affiliation must be untouched.
	got, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.GymID == nil || *got.GymID != firstGym {
		t.Errorf("GymID: got %v, want %s", got.GymID, firstGym.Hex())
	}

	// After clearing, the user can be attached again.
	if err := store.ClearAffiliation(ctx, user.ID); err != nil {
		t.Fatalf("ClearAffiliation failed: %v", err)
	}
	if err := store.SetAffiliation(ctx, user.ID, primitive.NewObjectID()); err != nil {
		t.Errorf("SetAffiliation after clear failed: %v", err)
	}
}

func TestStore_SetAffiliation_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.SetAffiliation(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}
