// internal/app/features/chat/handler.go
package chat

import (
	"net/http"
	"time"

	messagestore "github.com/easyfittrack/fittrack/internal/app/store/messages"
	userstore "github.com/easyfittrack/fittrack/internal/app/store/users"
	"github.com/easyfittrack/fittrack/internal/app/system/auditlog"
	"github.com/easyfittrack/fittrack/internal/app/system/authz"
	"github.com/easyfittrack/fittrack/internal/app/system/ratelimit"
	"github.com/easyfittrack/fittrack/internal/app/system/respond"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for gym chat: the WebSocket endpoint
// plus the REST history and unread routes.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Hub      *Hub
	Users    *userstore.Store
	Messages *messagestore.Store

	upgrader  websocket.Upgrader
	sanitize  *bluemonday.Policy
	sendLimit *ratelimit.Limiter
}

// Per-sender message rate limit.
const (
	sendLimitCount  = 30
	sendLimitWindow = 10 * time.Second
)

func NewHandler(db *mongo.Database, hub *Hub, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		AuditLog: audit,
		Hub:      hub,
		Users:    userstore.New(db),
		Messages: messagestore.New(db),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sanitize:  bluemonday.StrictPolicy(),
		sendLimit: ratelimit.New(sendLimitCount, sendLimitWindow),
	}
}

// ServeWS handles GET /chat/ws: upgrades the connection and starts the read
// and write loops. Browsers cannot set headers on WebSocket dials, so the
// token middleware also accepts the token as a query parameter here.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required")
		return
	}
	gymID := authz.UserGymID(r)
	if gymID.IsZero() {
		respond.Error(w, http.StatusForbidden, "Chat requires a gym affiliation")
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn("chat: upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:     uuid.NewString(),
		userID: userID,
		role:   role,
		gymID:  gymID,
		ws:     ws,
		send:   make(chan []byte, sendBufferSize),
		h:      h,
		rooms:  make(map[primitive.ObjectID]struct{}),
	}

	go c.writePump()
	go c.readPump()
}
