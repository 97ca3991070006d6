package models

import (
	"time"
)

// Message represents one mail inside a thread
type Message struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ThreadID      uint      `gorm:"not null;index" json:"thread_id"`
	SenderID      uint      `gorm:"not null;index" json:"sender_id"`
	Subject       string    `gorm:"size:255" json:"subject"`
	Body          string    `gorm:"type:text;not null" json:"body"`
	SenderDeleted bool      `gorm:"not null;default:false" json:"sender_deleted"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Thread      Thread       `gorm:"foreignKey:ThreadID" json:"-"`
	Attachments []Attachment `gorm:"foreignKey:MessageID" json:"attachments,omitempty"`
	Recipients  []Recipient  `gorm:"foreignKey:MessageID" json:"-"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "mails"
}

// ColumnSenderDeleted is the column flipped by MarkSenderDeleted
const ColumnSenderDeleted = "sender_deleted"

// MarkSenderDeleted hides the mail from its sender's sent view.
// The row itself is kept for every other participant.
func (m *Message) MarkSenderDeleted() {
	m.SenderDeleted = true
}

// Preview returns the first n runes of the body
func (m *Message) Preview(n int) string {
	return Preview(m.Body, n)
}

// Preview truncates s to at most n runes
func Preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
