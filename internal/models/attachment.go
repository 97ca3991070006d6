package models

// Attachment represents a file attached to a mail. Rows are never updated.
type Attachment struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	MessageID    uint   `gorm:"column:mail_id;not null;index" json:"mail_id"`
	OriginalName string `gorm:"size:255" json:"original_name"`
	FileName     string `gorm:"size:255" json:"file_name"`
	FilePath     string `gorm:"size:500" json:"file_path"`
	MimeType     string `gorm:"size:100" json:"mime_type"`
	FileSize     int64  `json:"file_size"`
}

// TableName returns the table name for Attachment
func (Attachment) TableName() string {
	return "mail_attachments"
}
