package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/welldanyogia/projecthub-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipientRepository defines the interface for recipient row access.
// Rows are created in bulk with their mail and afterwards only marked
// read or deleted.
type RecipientRepository interface {
	CreateBatch(ctx context.Context, recipients []models.Recipient) error
	ListByMessages(ctx context.Context, messageIDs []uint) ([]models.Recipient, error)
	RecipientIDsInThread(ctx context.Context, threadID uint) ([]uint, error)
	InboxThreadIDs(ctx context.Context, recipientID uint) ([]uint, error)
	MarkRead(ctx context.Context, messageID, recipientID uint, at time.Time) (int64, error)
	MarkDeletedInThread(ctx context.Context, threadID, recipientID uint) (int64, error)
}

// recipientRepository implements RecipientRepository using GORM
type recipientRepository struct {
	db *gorm.DB
}

// NewRecipientRepository creates a new RecipientRepository instance
func NewRecipientRepository(db *gorm.DB) RecipientRepository {
	return &recipientRepository{db: db}
}

// CreateBatch inserts all recipient rows in one statement
func (r *recipientRepository) CreateBatch(ctx context.Context, recipients []models.Recipient) error {
	if len(recipients) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Omit(clause.Associations).Create(&recipients)
	if result.Error != nil {
		return fmt.Errorf("failed to create recipients: %w", result.Error)
	}
	return nil
}

// ListByMessages retrieves the recipient rows of several mails
func (r *recipientRepository) ListByMessages(ctx context.Context, messageIDs []uint) ([]models.Recipient, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	var recipients []models.Recipient
	result := r.db.WithContext(ctx).
		Where("mail_id IN ?", messageIDs).
		Order("mail_id ASC").Order("recipient_id ASC").
		Find(&recipients)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", result.Error)
	}
	return recipients, nil
}

// RecipientIDsInThread returns every distinct recipient of any mail in the thread
func (r *recipientRepository) RecipientIDsInThread(ctx context.Context, threadID uint) ([]uint, error) {
	var ids []uint
	result := r.db.WithContext(ctx).Model(&models.Recipient{}).
		Joins("JOIN mails ON mails.id = mail_recipients.mail_id").
		Where("mails.thread_id = ?", threadID).
		Distinct().
		Pluck("mail_recipients.recipient_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list thread recipients: %w", result.Error)
	}
	return ids, nil
}

// InboxThreadIDs returns the threads in which the user holds a visible recipient row
func (r *recipientRepository) InboxThreadIDs(ctx context.Context, recipientID uint) ([]uint, error) {
	var ids []uint
	result := r.db.WithContext(ctx).Model(&models.Recipient{}).
		Joins("JOIN mails ON mails.id = mail_recipients.mail_id").
		Where("mail_recipients.recipient_id = ? AND mail_recipients.is_deleted = ?", recipientID, false).
		Distinct().
		Pluck("mails.thread_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list inbox threads: %w", result.Error)
	}
	return ids, nil
}

// MarkRead flags a single recipient row as read. A missing row affects zero
// rows and is not an error.
func (r *recipientRepository) MarkRead(ctx context.Context, messageID, recipientID uint, at time.Time) (int64, error) {
	var row models.Recipient
	row.MarkRead(at)

	result := r.db.WithContext(ctx).Model(&models.Recipient{}).
		Where("mail_id = ? AND recipient_id = ?", messageID, recipientID).
		Updates(map[string]interface{}{
			models.ColumnRecipientRead:   row.IsRead,
			models.ColumnRecipientReadAt: row.ReadAt,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark recipient read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// MarkDeletedInThread hides every mail of the thread from the user's inbox
func (r *recipientRepository) MarkDeletedInThread(ctx context.Context, threadID, recipientID uint) (int64, error) {
	var row models.Recipient
	row.MarkRecipientDeleted()

	db := r.db.WithContext(ctx)
	threadMails := db.Model(&models.Message{}).Select("id").Where("thread_id = ?", threadID)

	result := db.Model(&models.Recipient{}).
		Where("recipient_id = ? AND mail_id IN (?)", recipientID, threadMails).
		Update(models.ColumnRecipientDeleted, row.IsDeleted)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark recipient deleted: %w", result.Error)
	}
	return result.RowsAffected, nil
}
