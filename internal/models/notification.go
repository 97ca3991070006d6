package models

import (
	"time"
)

// Notification types used across the service
const (
	NotificationTypeProjectStarted = "PROJECT_STARTED"
	NotificationTypeMailReceived   = "MAIL_RECEIVED"
	NotificationTypeAnnouncement   = "ANNOUNCEMENT"
)

// Notification is an append-only announcement row.
// A nil UserID means the row is a broadcast to every user.
type Notification struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	Title      string    `gorm:"not null;size:255" json:"title"`
	Message    string    `gorm:"type:text" json:"message"`
	Type       string    `gorm:"size:64;index" json:"type"`
	EntityType string    `gorm:"size:64" json:"entity_type,omitempty"`
	EntityID   uint      `json:"entity_id,omitempty"`
	IsRead     bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName returns the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// ColumnNotificationRead is the only mutable notification column
const ColumnNotificationRead = "is_read"

// IsBroadcast reports whether the notification targets every user
func (n *Notification) IsBroadcast() bool {
	return n.UserID == nil
}

// MarkRead flips the read flag
func (n *Notification) MarkRead() {
	n.IsRead = true
}
