// internal/app/features/chat/client.go
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/easyfittrack/fittrack/internal/app/system/authz"
	"github.com/easyfittrack/fittrack/internal/app/system/timeouts"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second
	// Send pings with this period; must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum inbound frame size.
	maxFrameSize = 8 << 10
	// Outbound buffer per connection.
	sendBufferSize = 64
)

// client is one WebSocket connection. The rooms set is touched only by the
// connection's own read loop, so it needs no lock; the hub tracks membership
// separately under its own locks.
type client struct {
	id     string
	userID primitive.ObjectID
	role   string
	gymID  primitive.ObjectID
	ws     *websocket.Conn
	send   chan []byte
	h      *Handler
	rooms  map[primitive.ObjectID]struct{}
}

func (c *client) readPump() {
	defer func() {
		for gymID := range c.rooms {
			c.h.Hub.Leave(gymID, c)
			c.h.AuditLog.RoomDeparted(c.userID, c.role, gymID, c.id)
		}
		close(c.send)
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(maxFrameSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.h.Log.Warn("chat: unexpected close", zap.Error(err), zap.String("conn_id", c.id))
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.sendError("Invalid frame")
			continue
		}

		switch frame.Type {
		case frameJoin:
			c.handleJoin(frame)
		case frameMessage:
			c.handleMessage(frame)
		case frameMarkRead:
			c.handleMarkRead(frame)
		default:
			c.sendError("Unknown frame type")
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleJoin puts the connection into a gym room. Only the user's own gym is
// allowed; chat never crosses gyms.
func (c *client) handleJoin(frame inboundFrame) {
	gymID, err := primitive.ObjectIDFromHex(frame.GymID)
	if err != nil {
		c.sendError("Invalid gym id")
		return
	}
	if !authz.CanMessage(c.gymID, gymID) {
		c.sendError("You are not affiliated with this gym")
		return
	}
	if _, joined := c.rooms[gymID]; joined {
		return
	}

	c.h.Hub.Join(gymID, c)
	c.rooms[gymID] = struct{}{}
	c.h.AuditLog.RoomJoined(c.userID, c.role, gymID, c.id)
}

// handleMessage persists a message and fans it out to the room. The store
// write and the broadcast happen under the room's delivery lock, so every
// resident sees messages in commit order.
func (c *client) handleMessage(frame inboundFrame) {
	if _, joined := c.rooms[c.gymID]; !joined {
		c.sendError("Join the gym room first")
		return
	}
	if !c.h.sendLimit.Allow(c.userID.Hex()) {
		c.sendError("Sending too fast, slow down")
		return
	}
	receiverID, err := primitive.ObjectIDFromHex(frame.ReceiverID)
	if err != nil {
		c.sendError("Invalid receiver id")
		return
	}
	body := c.h.sanitize.Sanitize(strings.TrimSpace(frame.Body))
	if body == "" {
		c.sendError("Message body is empty")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()

	receiver, err := c.h.Users.GetByID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.sendError("Receiver not found")
			return
		}
		c.h.Log.Error("chat: receiver load failed", zap.Error(err))
		c.sendError("Message failed")
		return
	}
	if receiver.GymID == nil || *receiver.GymID != c.gymID {
		c.sendError("Receiver is not at your gym")
		return
	}

	var stored models.Message
	err = c.h.Hub.Publish(c.gymID, func() ([]byte, error) {
		var err error
		stored, err = c.h.Messages.Insert(ctx, models.Message{
			SenderID:     c.userID,
			SenderRole:   c.role,
			ReceiverID:   receiverID,
			ReceiverRole: receiver.Role,
			GymID:        c.gymID,
			Body:         body,
		})
		if err != nil {
			return nil, err
		}
		return json.Marshal(messageFrame{
			Type: frameMessage,
			Message: messageView{
				ID:           stored.ID.Hex(),
				SenderID:     stored.SenderID.Hex(),
				SenderRole:   stored.SenderRole,
				ReceiverID:   stored.ReceiverID.Hex(),
				ReceiverRole: stored.ReceiverRole,
				GymID:        stored.GymID.Hex(),
				Body:         stored.Body,
				Status:       stored.Status,
				CreatedAt:    stored.CreatedAt,
			},
		})
	})
	if err != nil {
		c.h.Log.Error("chat: message persist failed", zap.Error(err), zap.String("conn_id", c.id))
		c.sendError("Message failed")
		return
	}

	c.h.AuditLog.MessageSent(c.userID, c.role, c.gymID, receiverID, stored.ID)
}

// handleMarkRead flips every sent message from the named sender to this user
// to read and announces the receipt to the room.
func (c *client) handleMarkRead(frame inboundFrame) {
	if _, joined := c.rooms[c.gymID]; !joined {
		c.sendError("Join the gym room first")
		return
	}
	senderID, err := primitive.ObjectIDFromHex(frame.SenderID)
	if err != nil {
		c.sendError("Invalid sender id")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()

	var count int64
	err = c.h.Hub.Publish(c.gymID, func() ([]byte, error) {
		var err error
		count, err = c.h.Messages.MarkRead(ctx, senderID, c.userID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(readFrame{
			Type:     frameMessagesRead,
			ReaderID: c.userID.Hex(),
			SenderID: senderID.Hex(),
			Count:    count,
		})
	})
	if err != nil {
		c.h.Log.Error("chat: mark read failed", zap.Error(err), zap.String("conn_id", c.id))
		c.sendError("Mark read failed")
		return
	}

	c.h.AuditLog.MessagesRead(c.userID, c.role, c.gymID, senderID, count)
}

func (c *client) sendError(msg string) {
	frame, err := json.Marshal(errorFrame{Type: frameError, Message: msg})
	if err != nil {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}
