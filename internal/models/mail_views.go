package models

import (
	"time"
)

// PreviewLength is the number of runes shown in list previews
const PreviewLength = 120

// MailReply is one entry of a thread's reply chain in list views
type MailReply struct {
	ID         uint      `json:"id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	SenderID   uint      `json:"sender_id"`
	SenderName string    `json:"sender_name"`
}

// InboxItem is a thread as shown in a user's inbox, keyed on its latest mail
type InboxItem struct {
	ID               uint         `json:"id"`
	ThreadID         uint         `json:"thread_id"`
	Subject          string       `json:"subject"`
	Preview          string       `json:"preview"`
	CreatedAt        time.Time    `json:"created_at"`
	SenderID         uint         `json:"sender_id"`
	SenderName       string       `json:"sender_name"`
	SenderEmail      string       `json:"sender_email"`
	IsRead           bool         `json:"is_read"`
	AttachmentsCount int          `json:"attachments_count"`
	Attachments      []Attachment `json:"attachments"`
	HasReplies       bool         `json:"has_replies"`
	RepliesCount     int          `json:"replies_count"`
	Replies          []MailReply  `json:"replies"`
}

// SentItem is a mail as shown in the sender's sent view
type SentItem struct {
	ID               uint         `json:"id"`
	ThreadID         uint         `json:"thread_id"`
	Subject          string       `json:"subject"`
	Preview          string       `json:"preview"`
	CreatedAt        time.Time    `json:"created_at"`
	Recipients       string       `json:"recipients"`
	AttachmentsCount int          `json:"attachments_count"`
	Attachments      []Attachment `json:"attachments"`
}

// ThreadMail is one mail of a thread detail view
type ThreadMail struct {
	ID          uint         `json:"id"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	CreatedAt   time.Time    `json:"created_at"`
	SenderID    uint         `json:"sender_id"`
	SenderName  string       `json:"sender_name"`
	SenderEmail string       `json:"sender_email"`
	Attachments []Attachment `json:"attachments"`
}

// ThreadDetail is the canonical history of a thread, unaffected by delete flags
type ThreadDetail struct {
	ThreadID uint         `json:"thread_id"`
	Subject  string       `json:"subject"`
	Mails    []ThreadMail `json:"mails"`
}

// AdminRecipient is a recipient row with its read and delete state
type AdminRecipient struct {
	RecipientID    uint   `json:"recipient_id"`
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	IsRead         bool   `json:"is_read"`
	IsDeleted      bool   `json:"is_deleted"`
}

// AdminMail is a mail in the administrative view, including deleted flags
type AdminMail struct {
	ThreadMail
	SenderDeleted bool             `json:"sender_deleted"`
	Recipients    []AdminRecipient `json:"recipients"`
}

// AdminThread is a thread in the administrative view
type AdminThread struct {
	ThreadID  uint        `json:"thread_id"`
	Subject   string      `json:"subject"`
	CreatedAt time.Time   `json:"created_at"`
	CreatedBy UserRef     `json:"created_by"`
	Mails     []AdminMail `json:"mails"`
}

// UserRef is a compact user reference
type UserRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
