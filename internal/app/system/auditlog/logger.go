// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"time"

	auditstore "github.com/easyfittrack/fittrack/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Lifecycle controls logging for membership lifecycle events (join
	// requests, duration requests, removals).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Lifecycle string
	// Messaging controls logging for chat events (sends, read receipts).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Messaging string
}

// Logger records audit events to MongoDB (via auditstore.Store) and to
// structured logs (via zap). The MongoDB write happens on a detached
// goroutine so a slow or failing audit insert never blocks the calling
// operation.
type Logger struct {
	store  *auditstore.Store
	zapLog *zap.Logger
	config Config
}

const insertTimeout = 5 * time.Second

// New creates a new audit Logger.
func New(store *auditstore.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event auditstore.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
	}
	if !event.ActorID.IsZero() {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.ActorRole != "" {
		fields = append(fields, zap.String("actor_role", event.ActorRole))
	}
	if !event.GymID.IsZero() {
		fields = append(fields, zap.String("gym_id", event.GymID.Hex()))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.Any("detail_"+k, v))
	}
	l.zapLog.Info(event.Detail, fields...)
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(event auditstore.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case auditstore.CategoryLifecycle:
		setting = l.config.Lifecycle
	case auditstore.CategoryMessaging:
		setting = l.config.Messaging
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		// Detached from the caller's context so the record survives the
		// request ending.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
			defer cancel()
			if err := l.store.Insert(ctx, event); err != nil {
				l.zapLog.Error("failed to store audit event",
					zap.Error(err),
					zap.String("event_type", event.EventType),
				)
			}
		}()
	}
}

// --- Lifecycle events ---

// JoinRequestSubmitted logs a new join request.
func (l *Logger) JoinRequestSubmitted(actorID primitive.ObjectID, actorRole string, gymID, requestID primitive.ObjectID) {
	l.Log(auditstore.Event{
		Category:  auditstore.CategoryLifecycle,
		EventType: auditstore.EventJoinRequestSubmitted,
		ActorID:   actorID,
		ActorRole: actorRole,
		GymID:     gymID,
		Detail:    "join request submitted",
		Details:   map[string]any{"request_id": requestID.Hex()},
	})
}

// JoinRequestResolved logs an accept or deny decision on a join request.
func (l *Logger) JoinRequestResolved(actorID primitive.ObjectID, actorRole string, gymID, requestID primitive.ObjectID, accepted bool) {
	eventType := auditstore.EventJoinRequestDenied
	detail := "join request denied"
	if accepted {
		eventType = auditstore.EventJoinRequestAccepted
		detail = "join request accepted"
	}
	l.Log(auditstore.Event{
		Category:  auditstore.CategoryLifecycle,
		EventType: eventType,
		ActorID:   actorID,
		ActorRole: actorRole,
		GymID:     gymID,
		Detail:    detail,
		Details:   map[string]any{"request_id": requestID.Hex()},
	})
}

// MembershipRequestSubmitted logs a new membership duration request.
func (l *Logger) MembershipRequestSubmitted(memberID, gymID, requestID primitive.ObjectID, duration string) {
	l.Log(auditstore.Event{
		Category:  auditstore.CategoryLifecycle,
		EventType: auditstore.EventMembershipRequestSubmitted,
		ActorID:   memberID,
		ActorRole: "member",
		GymID:     gymID,
		Detail:    "membership request submitted",
		Details:   map[string]any{"request_id": requestID.Hex(), "duration": duration},
	})
}

// MembershipRequestResolved logs an approve or deny decision on a duration request.
func (l *Logger) MembershipRequestResolved(actorID primitive.ObjectID, actorRole string, gymID, requestID primitive.ObjectID, approved bool) {
	eventType := auditstore.EventMembershipRequestDenied
	detail := "membership request denied"
	if approved {
		eventType = auditstore.EventMembershipRequestApproved
		detail = "membership request approved"
	}
	l.Log(auditstore.Event{
		Category:  auditstore.CategoryLifecycle,
		EventType: eventType,
		ActorID:   actorID,
		ActorRole: actorRole,
		GymID:     gymID,
		Detail:    detail,
		Details:   map[string]any{"request_id": requestID.Hex()},
	})
}

// MembershipSet logs a membership an owner granted directly.
func (l *Logger) MembershipSet(actorID primitive.ObjectID, actorRole string, gymID, memberID primitive.ObjectID, duration string, reconciled bool) {
	l.Log(auditstore.Event{
		Category:  auditstore.CategoryLifecycle,
		EventType: auditstore.EventMembershipSet,
		ActorID:   actorID,
		ActorRole: actorRole,
		GymID:     gymID,
		Detail:    "membership set directly",
		Details: map[string]any{
			"member_id":  memberID.Hex(),
			"duration":   duration,
			"reconciled": reconciled,
		},
	})
}

// AffiliateRemoved logs an owner removing a member or trainer from the gym.
func (l *Logger) AffiliateRemoved(actorID primitive.ObjectID, actorRole string, gymID, affiliateID primitive.ObjectID, affiliateRole string) {
	l.Log(auditstore.Event{
		Category:  auditstore.CategoryLifecycle,
		EventType: auditstore.EventAffiliateRemoved,
		ActorID:   actorID,
		ActorRole: actorRole,
		GymID:     gymID,
		Detail:    "affiliate removed",
		Details: map[string]any{
			"affiliate_id":   affiliateID.Hex(),
			"affiliate_role": affiliateRole,
		},
	})
}

// GymProfileUpdated logs a change to the gym profile.
func (l *Logger) GymProfileUpdated(actorID primitive.ObjectID, actorRole string, gymID primitive.ObjectID, fieldsChanged string) {
	l.Log(auditstore.Event{
		Category:  auditstore.CategoryLifecycle,
		EventType: auditstore.EventGymProfileUpdated,
		ActorID:   actorID,
		ActorRole: actorRole,
		GymID:     gymID,
		Detail:    "gym profile updated",
		Details:   map[string]any{"fields_changed": fieldsChanged},
	})
}

// --- Messaging events ---

// MessageSent logs a chat message delivery.
func (l *Logger) MessageSent(senderID primitive.ObjectID, senderRole string, gymID, receiverID, messageID primitive.ObjectID) {
	l.Log(auditstore.Event{
		Category:  auditstore.CategoryMessaging,
		EventType: auditstore.EventMessageSent,
		ActorID:   senderID,
		ActorRole: senderRole,
		GymID:     gymID,
		Detail:    "message sent",
		Details: map[string]any{
			"receiver_id": receiverID.Hex(),
			"message_id":  messageID.Hex(),
		},
	})
}

// MessagesRead logs a read receipt covering count messages.
func (l *Logger) MessagesRead(readerID primitive.ObjectID, readerRole string, gymID, senderID primitive.ObjectID, count int64) {
	l.Log(auditstore.Event{
		Category:  auditstore.CategoryMessaging,
		EventType: auditstore.EventMessagesRead,
		ActorID:   readerID,
		ActorRole: readerRole,
		GymID:     gymID,
		Detail:    "messages marked read",
		Details: map[string]any{
			"sender_id": senderID.Hex(),
			"count":     count,
		},
	})
}

// RoomJoined logs a connection entering a gym room.
func (l *Logger) RoomJoined(userID primitive.ObjectID, userRole string, gymID primitive.ObjectID, connID string) {
	l.Log(auditstore.Event{
		Category:  auditstore.CategoryMessaging,
		EventType: auditstore.EventRoomJoined,
		ActorID:   userID,
		ActorRole: userRole,
		GymID:     gymID,
		Detail:    "room joined",
		Details:   map[string]any{"conn_id": connID},
	})
}

// RoomDeparted logs a connection leaving a gym room.
func (l *Logger) RoomDeparted(userID primitive.ObjectID, userRole string, gymID primitive.ObjectID, connID string) {
	l.Log(auditstore.Event{
		Category:  auditstore.CategoryMessaging,
		EventType: auditstore.EventRoomDeparted,
		ActorID:   userID,
		ActorRole: userRole,
		GymID:     gymID,
		Detail:    "room departed",
		Details:   map[string]any{"conn_id": connID},
	})
}
