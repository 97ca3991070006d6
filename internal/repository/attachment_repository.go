package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/welldanyogia/projecthub-backend/internal/models"
	"gorm.io/gorm"
)

// AttachmentRepository defines the interface for attachment data access.
// Attachment rows are immutable, so there is no update or delete.
type AttachmentRepository interface {
	CreateBatch(ctx context.Context, messageID uint, attachments []models.Attachment) error
	GetByID(ctx context.Context, id uint) (*models.Attachment, error)
	ListByMessages(ctx context.Context, messageIDs []uint) ([]models.Attachment, error)
}

// attachmentRepository implements AttachmentRepository using GORM
type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new AttachmentRepository instance
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

// CreateBatch inserts the attachments of a mail in one statement
func (r *attachmentRepository) CreateBatch(ctx context.Context, messageID uint, attachments []models.Attachment) error {
	if len(attachments) == 0 {
		return nil
	}
	for i := range attachments {
		attachments[i].MessageID = messageID
	}
	result := r.db.WithContext(ctx).Create(&attachments)
	if result.Error != nil {
		return fmt.Errorf("failed to create attachments: %w", result.Error)
	}
	return nil
}

// GetByID retrieves an attachment by its ID
func (r *attachmentRepository) GetByID(ctx context.Context, id uint) (*models.Attachment, error) {
	var attachment models.Attachment
	result := r.db.WithContext(ctx).First(&attachment, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get attachment by ID: %w", result.Error)
	}
	return &attachment, nil
}

// ListByMessages retrieves all attachments of the given mails
func (r *attachmentRepository) ListByMessages(ctx context.Context, messageIDs []uint) ([]models.Attachment, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	var attachments []models.Attachment
	result := r.db.WithContext(ctx).Where("mail_id IN ?", messageIDs).Order("id ASC").Find(&attachments)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", result.Error)
	}
	return attachments, nil
}
