package models

import (
	"time"
)

// Thread groups an ordered chain of mails under one subject.
// The subject is set once on the first send and never updated.
type Thread struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Subject   string    `gorm:"not null;size:255" json:"subject"`
	CreatedBy uint      `gorm:"not null;index" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Messages []Message `gorm:"foreignKey:ThreadID" json:"-"`
}

// TableName returns the table name for Thread
func (Thread) TableName() string {
	return "mail_threads"
}
