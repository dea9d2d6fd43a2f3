package chat_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/easyfittrack/fittrack/internal/app/features/chat"
	messagestore "github.com/easyfittrack/fittrack/internal/app/store/messages"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"github.com/easyfittrack/fittrack/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// wsTestEnv hosts one chat handler behind servers that authenticate each
// request as a fixed user, mimicking the token middleware.
type wsTestEnv struct {
	t   *testing.T
	db  *mongo.Database
	h   *chat.Handler
	hub *chat.Hub
}

func newWSEnv(t *testing.T) *wsTestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	hub := chat.NewHub(zap.NewNop())
	h := chat.NewHandler(db, hub, nil, zap.NewNop())
	return &wsTestEnv{t: t, db: db, h: h, hub: hub}
}

// dial opens a WebSocket to the chat endpoint authenticated as user.
func (e *wsTestEnv) dial(user testutil.TestUser) *websocket.Conn {
	e.t.Helper()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, testutil.WithUser(req, user))
		})
	})
	r.Mount("/chat", chat.Routes(e.h))

	srv := httptest.NewServer(r)
	e.t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		e.t.Fatalf("dial failed: %v", err)
	}
	e.t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func (e *wsTestEnv) send(ws *websocket.Conn, frame map[string]string) {
	e.t.Helper()
	if err := ws.WriteJSON(frame); err != nil {
		e.t.Fatalf("write failed: %v", err)
	}
}

func (e *wsTestEnv) read(ws *websocket.Conn, v any) {
	e.t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := ws.ReadMessage()
	if err != nil {
		e.t.Fatalf("read failed: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		e.t.Fatalf("unmarshal %q failed: %v", raw, err)
	}
}

// waitForRoom blocks until the gym room holds n connections.
func (e *wsTestEnv) waitForRoom(gymID primitive.ObjectID, n int) {
	e.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if e.hub.RoomSize(gymID) == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	e.t.Fatalf("room %s never reached %d connections", gymID.Hex(), n)
}

func TestChat_SendAndReceive(t *testing.T) {
	env := newWSEnv(t)
	fix := testutil.NewFixtures(t, env.db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gym := fix.CreateGym(ctx, "Iron Temple")
	sender := fix.CreateMember(ctx, "Jordan", "jordan@test.com", gym.ID)
	receiver := fix.CreateTrainer(ctx, "Sam", "sam@test.com", gym.ID)

	senderWS := env.dial(asTestUser(sender))
	receiverWS := env.dial(asTestUser(receiver))

	env.send(senderWS, map[string]string{"type": "join", "gym_id": gym.ID.Hex()})
	env.send(receiverWS, map[string]string{"type": "join", "gym_id": gym.ID.Hex()})
	env.waitForRoom(gym.ID, 2)

	env.send(senderWS, map[string]string{
		"type":        "message",
		"receiver_id": receiver.ID.Hex(),
		"body":        "see you at 6?",
	})

	// Both room residents get the broadcast, the sender included.
	for _, ws := range []*websocket.Conn{senderWS, receiverWS} {
		var got struct {
			Type    string `json:"type"`
			Message struct {
				SenderID string `json:"sender_id"`
				Body     string `json:"body"`
				Status   string `json:"status"`
			} `json:"message"`
		}
		env.read(ws, &got)
		if got.Type != "message" {
			t.Fatalf("type: got %q, want %q", got.Type, "message")
		}
		if got.Message.Body != "see you at 6?" {
			t.Errorf("body: got %q", got.Message.Body)
		}
		if got.Message.SenderID != sender.ID.Hex() {
			t.Errorf("sender_id: got %q, want %q", got.Message.SenderID, sender.ID.Hex())
		}
		if got.Message.Status != models.MessageSent {
			t.Errorf("status: got %q, want %q", got.Message.Status, models.MessageSent)
		}
	}

	// The message was persisted.
	msgs, err := messagestore.New(env.db).Conversation(ctx, gym.ID, sender.ID, receiver.ID)
	if err != nil {
		t.Fatalf("Conversation failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(msgs))
	}
}

func TestChat_MarkRead(t *testing.T) {
	env := newWSEnv(t)
	fix := testutil.NewFixtures(t, env.db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gym := fix.CreateGym(ctx, "Iron Temple")
	sender := fix.CreateMember(ctx, "Jordan", "jordan@test.com", gym.ID)
	reader := fix.CreateTrainer(ctx, "Sam", "sam@test.com", gym.ID)
	fix.CreateMessage(ctx, sender.ID, reader.ID, gym.ID, "one")
	fix.CreateMessage(ctx, sender.ID, reader.ID, gym.ID, "two")

	readerWS := env.dial(asTestUser(reader))
	env.send(readerWS, map[string]string{"type": "join", "gym_id": gym.ID.Hex()})
	env.waitForRoom(gym.ID, 1)

	env.send(readerWS, map[string]string{"type": "mark_read", "sender_id": sender.ID.Hex()})

	var got struct {
		Type     string `json:"type"`
		ReaderID string `json:"reader_id"`
		SenderID string `json:"sender_id"`
		Count    int64  `json:"count"`
	}
	env.read(readerWS, &got)
	if got.Type != "messages_read" {
		t.Fatalf("type: got %q, want %q", got.Type, "messages_read")
	}
	if got.Count != 2 {
		t.Errorf("count: got %d, want 2", got.Count)
	}
	if got.ReaderID != reader.ID.Hex() || got.SenderID != sender.ID.Hex() {
		t.Errorf("ids: got reader=%q sender=%q", got.ReaderID, got.SenderID)
	}

	msgs, err := messagestore.New(env.db).Conversation(ctx, gym.ID, sender.ID, reader.ID)
	if err != nil {
		t.Fatalf("Conversation failed: %v", err)
	}
	for _, m := range msgs {
		if m.Status != models.MessageRead {
			t.Errorf("message %s status: got %q, want %q", m.ID.Hex(), m.Status, models.MessageRead)
		}
	}
}

func TestChat_Rejections(t *testing.T) {
	env := newWSEnv(t)
	fix := testutil.NewFixtures(t, env.db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gym := fix.CreateGym(ctx, "Iron Temple")
	otherGym := fix.CreateGym(ctx, "Apex Gym")
	member := fix.CreateMember(ctx, "Jordan", "jordan@test.com", gym.ID)
	foreign := fix.CreateMember(ctx, "Far", "far@test.com", otherGym.ID)

	ws := env.dial(asTestUser(member))

	// Joining another gym's room is refused.
	env.send(ws, map[string]string{"type": "join", "gym_id": otherGym.ID.Hex()})
	var errResp struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	env.read(ws, &errResp)
	if errResp.Type != "error" {
		t.Fatalf("type: got %q, want %q", errResp.Type, "error")
	}

	// Messaging before joining the own-gym room is refused.
	env.send(ws, map[string]string{"type": "message", "receiver_id": foreign.ID.Hex(), "body": "hi"})
	env.read(ws, &errResp)
	if errResp.Type != "error" {
		t.Fatalf("type: got %q, want %q", errResp.Type, "error")
	}

	// After joining, messaging someone at another gym is refused.
	env.send(ws, map[string]string{"type": "join", "gym_id": gym.ID.Hex()})
	env.waitForRoom(gym.ID, 1)
	env.send(ws, map[string]string{"type": "message", "receiver_id": foreign.ID.Hex(), "body": "hi"})
	env.read(ws, &errResp)
	if errResp.Type != "error" {
		t.Fatalf("type: got %q, want %q", errResp.Type, "error")
	}
}

func TestServeHistoryAndUnread(t *testing.T) {
	env := newWSEnv(t)
	fix := testutil.NewFixtures(t, env.db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gym := fix.CreateGym(ctx, "Iron Temple")
	member := fix.CreateMember(ctx, "Jordan", "jordan@test.com", gym.ID)
	trainer := fix.CreateTrainer(ctx, "Sam", "sam@test.com", gym.ID)
	fix.CreateMessage(ctx, trainer.ID, member.ID, gym.ID, "welcome")
	fix.CreateMessage(ctx, member.ID, trainer.ID, gym.ID, "thanks")

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/chat/history/"+trainer.ID.Hex(), asTestUser(member))
	req = testutil.WithChiURLParam(req, "userID", trainer.ID.Hex())
	rec := testutil.NewRecorder()
	env.h.ServeHistory(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	var history []struct {
		Body string `json:"body"`
	}
	testutil.DecodeJSON(t, rec.Body, &history)
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Body != "welcome" || history[1].Body != "thanks" {
		t.Errorf("unexpected order: %+v", history)
	}

	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/chat/unread", asTestUser(member))
	rec = testutil.NewRecorder()
	env.h.ServeUnread(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	var unread map[string]int64
	testutil.DecodeJSON(t, rec.Body, &unread)
	if unread[trainer.ID.Hex()] != 1 {
		t.Errorf("unread from trainer: got %d, want 1", unread[trainer.ID.Hex()])
	}
}

func asTestUser(u models.User) testutil.TestUser {
	tu := testutil.TestUser{ID: u.ID.Hex(), Name: u.FullName, Role: u.Role}
	if u.GymID != nil {
		tu.GymID = u.GymID.Hex()
	}
	return tu
}
