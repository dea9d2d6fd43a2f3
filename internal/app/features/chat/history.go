// internal/app/features/chat/history.go
package chat

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/easyfittrack/fittrack/internal/app/system/authz"
	"github.com/easyfittrack/fittrack/internal/app/system/respond"
	"github.com/easyfittrack/fittrack/internal/app/system/timeouts"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func viewOf(m models.Message) messageView {
	return messageView{
		ID:           m.ID.Hex(),
		SenderID:     m.SenderID.Hex(),
		SenderRole:   m.SenderRole,
		ReceiverID:   m.ReceiverID.Hex(),
		ReceiverRole: m.ReceiverRole,
		GymID:        m.GymID.Hex(),
		Body:         m.Body,
		Status:       m.Status,
		CreatedAt:    m.CreatedAt,
	}
}

// ServeHistory handles GET /chat/history/{userID}: the full conversation
// between the signed-in user and the named user at the caller's gym, oldest
// first.
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required")
		return
	}
	gymID := authz.UserGymID(r)
	if gymID.IsZero() {
		respond.Error(w, http.StatusForbidden, "Chat requires a gym affiliation")
		return
	}
	otherID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	msgs, err := h.Messages.Conversation(ctx, gymID, userID, otherID)
	if err != nil {
		h.Log.Error("chat history load failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to load conversation")
		return
	}

	out := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, viewOf(m))
	}
	respond.JSON(w, http.StatusOK, out)
}

type markReadRequest struct {
	SenderID string `json:"sender_id"`
}

// HandleMarkRead handles POST /chat/read: the REST twin of the mark_read
// socket frame, for clients without an open socket. The receipt is still
// announced to the room.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
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

	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	senderID, err := primitive.ObjectIDFromHex(req.SenderID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid sender id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var count int64
	err = h.Hub.Publish(gymID, func() ([]byte, error) {
		var err error
		count, err = h.Messages.MarkRead(ctx, senderID, userID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(readFrame{
			Type:     frameMessagesRead,
			ReaderID: userID.Hex(),
			SenderID: senderID.Hex(),
			Count:    count,
		})
	})
	if err != nil {
		h.Log.Error("chat mark read failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to mark messages read")
		return
	}

	h.AuditLog.MessagesRead(userID, role, gymID, senderID, count)
	respond.JSON(w, http.StatusOK, map[string]int64{"marked": count})
}

// ServeUnread handles GET /chat/unread: per-sender counts of the caller's
// unseen messages.
func (h *Handler) ServeUnread(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	counts, err := h.Messages.UnreadCounts(ctx, userID)
	if err != nil {
		h.Log.Error("chat unread count failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to load unread counts")
		return
	}

	out := make(map[string]int64, len(counts))
	for senderID, n := range counts {
		out[senderID.Hex()] = n
	}
	respond.JSON(w, http.StatusOK, out)
}
