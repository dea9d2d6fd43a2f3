// internal/app/features/chat/protocol.go
package chat

import "time"

// Frame types sent by clients.
const (
	frameJoin     = "join"
	frameMessage  = "message"
	frameMarkRead = "mark_read"
)

// Frame types sent to clients. Outbound "message" reuses frameMessage.
const (
	frameMessagesRead = "messages_read"
	frameError        = "error"
)

// inboundFrame is the envelope for everything a client sends over the
// socket. Fields are populated according to Type.
type inboundFrame struct {
	Type string `json:"type"`

	// join
	GymID string `json:"gym_id,omitempty"`

	// message
	ReceiverID string `json:"receiver_id,omitempty"`
	Body       string `json:"body,omitempty"`

	// mark_read
	SenderID string `json:"sender_id,omitempty"`
}

// messageFrame is broadcast to a gym room when a message is committed.
type messageFrame struct {
	Type    string      `json:"type"`
	Message messageView `json:"message"`
}

// messageView is the wire shape of a stored message.
type messageView struct {
	ID           string    `json:"id"`
	SenderID     string    `json:"sender_id"`
	SenderRole   string    `json:"sender_role"`
	ReceiverID   string    `json:"receiver_id"`
	ReceiverRole string    `json:"receiver_role"`
	GymID        string    `json:"gym_id"`
	Body         string    `json:"body"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// readFrame is broadcast to a gym room when a read receipt lands.
type readFrame struct {
	Type     string `json:"type"`
	ReaderID string `json:"reader_id"`
	SenderID string `json:"sender_id"`
	Count    int64  `json:"count"`
}

// errorFrame is sent to a single connection when one of its frames is
// rejected.
type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
