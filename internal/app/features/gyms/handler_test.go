package gyms_test

import (
	"net/http"
	"testing"

	"github.com/easyfittrack/fittrack/internal/app/features/gyms"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"github.com/easyfittrack/fittrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestServeList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fix := testutil.NewFixtures(t, db)
	h := gyms.NewHandler(db, nil, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix.CreateGym(ctx, "Zen Fitness")
	fix.CreateGym(ctx, "Apex Gym")

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/gyms", testutil.UnaffiliatedUser(models.RoleMember))
	rec := testutil.NewRecorder()
	h.ServeList(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	var got []struct {
		Name        string `json:"name"`
		MemberCount int    `json:"member_count"`
	}
	testutil.DecodeJSON(t, rec.Body, &got)
	if len(got) != 2 {
		t.Fatalf("expected 2 gyms, got %d", len(got))
	}
	if got[0].Name != "Apex Gym" || got[1].Name != "Zen Fitness" {
		t.Errorf("expected name order [Apex Gym, Zen Fitness], got [%s, %s]", got[0].Name, got[1].Name)
	}
}

func TestServeDetail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fix := testutil.NewFixtures(t, db)
	h := gyms.NewHandler(db, nil, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gym := fix.CreateGym(ctx, "Iron Temple")
	member := fix.CreateMemberWithMembership(ctx, "Jordan", "jordan@test.com", gym.ID, models.DurationOneMonth)
	trainer := fix.CreateTrainer(ctx, "Sam", "sam@test.com", gym.ID)
	if _, err := db.Collection("gyms").UpdateOne(ctx,
		bson.M{"_id": gym.ID},
		bson.M{"$set": bson.M{
			"member_ids":  []primitive.ObjectID{member.ID},
			"trainer_ids": []primitive.ObjectID{trainer.ID},
		}}); err != nil {
		t.Fatalf("failed to seed rosters: %v", err)
	}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/gyms/"+gym.ID.Hex(), testutil.MemberUser(gym.ID))
	req = testutil.WithChiURLParam(req, "id", gym.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeDetail(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		Name    string `json:"name"`
		Members []struct {
			FullName   string `json:"full_name"`
			Membership *struct {
				Duration string `json:"duration"`
				Expired  bool   `json:"expired"`
			} `json:"membership"`
		} `json:"members"`
		Trainers []struct {
			FullName string `json:"full_name"`
		} `json:"trainers"`
	}
	testutil.DecodeJSON(t, rec.Body, &got)

	if len(got.Members) != 1 || got.Members[0].FullName != "Jordan" {
		t.Fatalf("members: got %+v, want Jordan", got.Members)
	}
	m := got.Members[0].Membership
	if m == nil || m.Duration != string(models.DurationOneMonth) || m.Expired {
		t.Errorf("membership view: got %+v", m)
	}
	if len(got.Trainers) != 1 || got.Trainers[0].FullName != "Sam" {
		t.Errorf("trainers: got %+v, want Sam", got.Trainers)
	}
}

func TestServeDetail_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := gyms.NewHandler(db, nil, zap.NewNop())

	id := primitive.NewObjectID()
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/gyms/"+id.Hex(), testutil.UnaffiliatedUser(models.RoleMember))
	req = testutil.WithChiURLParam(req, "id", id.Hex())
	rec := testutil.NewRecorder()
	h.ServeDetail(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleUpdateProfile_Sanitizes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fix := testutil.NewFixtures(t, db)
	h := gyms.NewHandler(db, nil, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gym := fix.CreateGym(ctx, "Iron Temple")

	body := map[string]string{
		"address": `<script>alert(1)</script>99 New Road`,
	}
	req := testutil.NewJSONRequest(t, http.MethodPut, "/gyms/profile", body, testutil.OwnerUser(gym.ID))
	rec := testutil.NewRecorder()
	h.HandleUpdateProfile(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		Address string `json:"address"`
	}
	testutil.DecodeJSON(t, rec.Body, &got)
	if got.Address != "99 New Road" {
		t.Errorf("address: got %q, want markup stripped", got.Address)
	}
}

func TestHandleUpdateProfile_EmptyBody(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fix := testutil.NewFixtures(t, db)
	h := gyms.NewHandler(db, nil, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gym := fix.CreateGym(ctx, "Iron Temple")

	req := testutil.NewJSONRequest(t, http.MethodPut, "/gyms/profile", map[string]string{}, testutil.OwnerUser(gym.ID))
	rec := testutil.NewRecorder()
	h.HandleUpdateProfile(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}
