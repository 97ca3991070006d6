package services

import (
	"log/slog"
	"time"
)

// Publisher delivers real-time events to connected users. Implementations
// must not block; delivery is best effort.
type Publisher interface {
	PushToUser(userID uint, event string, data interface{})
	PushToUsers(userIDs []uint, event string, data interface{})
	PushToAll(event string, data interface{})
}

// MailEvent is the payload of the mail:* events
type MailEvent struct {
	MailID      uint       `json:"mail_id"`
	ThreadID    uint       `json:"thread_id"`
	SenderID    uint       `json:"sender_id,omitempty"`
	SenderName  string     `json:"sender_name,omitempty"`
	SenderEmail string     `json:"sender_email,omitempty"`
	Subject     string     `json:"subject,omitempty"`
	Preview     string     `json:"preview,omitempty"`
	Recipients  []uint     `json:"recipient_ids,omitempty"`
	Action      string     `json:"action,omitempty"`
	Self        bool       `json:"self,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// Actions carried by mail:update
const (
	ActionReceived = "received"
	ActionSent     = "sent"
	ActionReplied  = "replied"
	ActionDeleted  = "deleted"
)

// push runs fn and swallows any panic from the delivery layer.
// Committed state never depends on a push.
func push(logger *slog.Logger, event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("real-time push failed",
				slog.String("event", event),
				slog.Any("panic", r))
		}
	}()
	fn()
}
