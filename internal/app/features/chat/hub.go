// internal/app/features/chat/hub.go
package chat

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Hub tracks which connections are in which gym room and fans frames out to
// them. Rooms are created on first join and removed when their last
// connection leaves.
type Hub struct {
	mu    sync.RWMutex
	rooms map[primitive.ObjectID]*room
	log   *zap.Logger
}

// room serializes delivery for one gym. Its mutex covers Publish end to end,
// so the order messages commit to storage is the order every resident
// connection sees them.
type room struct {
	mu    sync.Mutex
	conns map[*client]struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		rooms: make(map[primitive.ObjectID]*room),
		log:   log,
	}
}

// Join adds the connection to the gym's room, creating the room if needed.
func (h *Hub) Join(gymID primitive.ObjectID, c *client) {
	h.mu.Lock()
	rm, ok := h.rooms[gymID]
	if !ok {
		rm = &room{conns: make(map[*client]struct{})}
		h.rooms[gymID] = rm
	}
	h.mu.Unlock()

	rm.mu.Lock()
	rm.conns[c] = struct{}{}
	rm.mu.Unlock()
}

// Leave removes the connection from the gym's room and drops the room when
// it empties.
func (h *Hub) Leave(gymID primitive.ObjectID, c *client) {
	h.mu.Lock()
	rm, ok := h.rooms[gymID]
	if !ok {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	rm.mu.Lock()
	delete(rm.conns, c)
	empty := len(rm.conns) == 0
	rm.mu.Unlock()

	if empty {
		h.mu.Lock()
		// Re-check under the hub lock; another connection may have joined.
		rm.mu.Lock()
		if len(rm.conns) == 0 {
			delete(h.rooms, gymID)
		}
		rm.mu.Unlock()
		h.mu.Unlock()
	}
}

// Publish runs prepare while holding the room's delivery lock and fans the
// returned frame out to every connection in the room. prepare typically
// persists a document and returns its wire encoding; holding the lock across
// both steps keeps commit order and broadcast order identical. If prepare
// fails nothing is sent.
func (h *Hub) Publish(gymID primitive.ObjectID, prepare func() ([]byte, error)) error {
	h.mu.RLock()
	rm, ok := h.rooms[gymID]
	h.mu.RUnlock()
	if !ok {
		// Nobody is listening, but the write still has to happen.
		_, err := prepare()
		return err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	frame, err := prepare()
	if err != nil {
		return err
	}
	for c := range rm.conns {
		select {
		case c.send <- frame:
		default:
			// The connection's write buffer is full; drop the frame for
			// that connection rather than stalling the whole room.
			h.log.Warn("chat: dropping frame for slow connection",
				zap.String("conn_id", c.id),
				zap.String("gym_id", gymID.Hex()))
		}
	}
	return nil
}

// RoomSize reports how many connections are in the gym's room.
func (h *Hub) RoomSize(gymID primitive.ObjectID) int {
	h.mu.RLock()
	rm, ok := h.rooms[gymID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.conns)
}
