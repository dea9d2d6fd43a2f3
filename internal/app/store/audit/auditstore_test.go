package auditstore_test

import (
	"testing"

	auditstore "github.com/easyfittrack/fittrack/internal/app/store/audit"
	"github.com/easyfittrack/fittrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_InsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := auditstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gymID := primitive.NewObjectID()
	actorID := primitive.NewObjectID()

	events := []auditstore.Event{
		{Category: auditstore.CategoryLifecycle, EventType: "join_request_submitted", ActorID: actorID, ActorRole: "member", GymID: gymID, Detail: "join request submitted"},
		{Category: auditstore.CategoryLifecycle, EventType: "join_request_accepted", ActorID: primitive.NewObjectID(), ActorRole: "owner", GymID: gymID, Detail: "join request accepted"},
		{Category: auditstore.CategoryMessaging, EventType: "message_sent", ActorID: actorID, GymID: gymID, Detail: "message sent"},
		{Category: auditstore.CategoryMessaging, EventType: "message_sent", ActorID: actorID, GymID: primitive.NewObjectID(), Detail: "message sent elsewhere"},
	}
	for _, e := range events {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.Query(ctx, auditstore.Filter{GymID: gymID})
	if err != nil {
		t.Fatalf("Query by gym failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("gym query: expected 3 events, got %d", len(got))
	}

	got, err = store.Query(ctx, auditstore.Filter{Category: auditstore.CategoryLifecycle, GymID: gymID})
	if err != nil {
		t.Fatalf("Query by category failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("lifecycle query: expected 2 events, got %d", len(got))
	}

	got, err = store.Query(ctx, auditstore.Filter{ActorID: actorID, EventType: "message_sent"})
	if err != nil {
		t.Fatalf("Query by actor failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("actor query: expected 2 events, got %d", len(got))
	}

	for _, e := range got {
		if e.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
		if e.ID.IsZero() {
			t.Error("expected ID to be set")
		}
	}
}

func TestStore_Query_LimitDefault(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := auditstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gymID := primitive.NewObjectID()
	for i := 0; i < 5; i++ {
		if err := store.Insert(ctx, auditstore.Event{Category: auditstore.CategoryLifecycle, EventType: "join_request_submitted", GymID: gymID, Detail: "x"}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.Query(ctx, auditstore.Filter{GymID: gymID, Limit: 2})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected limit of 2, got %d", len(got))
	}
}
