package models

import (
	"time"
)

// Recipient is the per-user delivery record of a mail.
// Rows are written together with their mail and afterwards only
// move through MarkRead and MarkRecipientDeleted.
type Recipient struct {
	MessageID   uint       `gorm:"column:mail_id;primaryKey;autoIncrement:false" json:"mail_id"`
	RecipientID uint       `gorm:"primaryKey;autoIncrement:false;index" json:"recipient_id"`
	IsRead      bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	IsDeleted   bool       `gorm:"not null;default:false" json:"is_deleted"`

	// Relationships
	Message Message `gorm:"foreignKey:MessageID" json:"-"`
}

// TableName returns the table name for Recipient
func (Recipient) TableName() string {
	return "mail_recipients"
}

// Columns owned by the Recipient state transitions
const (
	ColumnRecipientRead    = "is_read"
	ColumnRecipientReadAt  = "read_at"
	ColumnRecipientDeleted = "is_deleted"
)

// MarkRead flags the mail as read by this recipient
func (r *Recipient) MarkRead(at time.Time) {
	r.IsRead = true
	r.ReadAt = &at
}

// MarkRecipientDeleted hides the mail from this recipient's inbox
func (r *Recipient) MarkRecipientDeleted() {
	r.IsDeleted = true
}
