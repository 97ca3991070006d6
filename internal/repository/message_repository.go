package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/welldanyogia/projecthub-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository defines the interface for mail data access
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	GetWithThread(ctx context.Context, id uint) (*models.Message, error)
	ListByThread(ctx context.Context, threadID uint) ([]models.Message, error)
	ListByThreads(ctx context.Context, threadIDs []uint) ([]models.Message, error)
	LatestByThreads(ctx context.Context, threadIDs []uint) ([]models.Message, error)
	ListSent(ctx context.Context, senderID uint) ([]models.Message, error)
	SenderIDsInThread(ctx context.Context, threadID uint) ([]uint, error)
	MarkSenderDeletedInThread(ctx context.Context, threadID, senderID uint) (int64, error)
}

// messageRepository implements MessageRepository using GORM
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository instance
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create creates a new mail
func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	result := r.db.WithContext(ctx).Omit(clause.Associations).Create(message)
	if result.Error != nil {
		return fmt.Errorf("failed to create message: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a mail by its ID with preloaded attachments
func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	result := r.db.WithContext(ctx).Preload("Attachments").First(&message, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message by ID: %w", result.Error)
	}
	return &message, nil
}

// GetWithThread retrieves a mail together with its thread
func (r *messageRepository) GetWithThread(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	result := r.db.WithContext(ctx).Preload("Thread").First(&message, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message with thread: %w", result.Error)
	}
	if message.Thread.ID == 0 {
		return nil, ErrNotFound
	}
	return &message, nil
}

// ListByThread retrieves the whole reply chain of a thread in ascending order,
// regardless of delete flags
func (r *messageRepository) ListByThread(ctx context.Context, threadID uint) ([]models.Message, error) {
	return r.ListByThreads(ctx, []uint{threadID})
}

// ListByThreads retrieves the mails of several threads in ascending order
func (r *messageRepository) ListByThreads(ctx context.Context, threadIDs []uint) ([]models.Message, error) {
	if len(threadIDs) == 0 {
		return nil, nil
	}
	var messages []models.Message
	result := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("thread_id IN ?", threadIDs).
		Order("created_at ASC").Order("id ASC").
		Find(&messages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list thread messages: %w", result.Error)
	}
	return messages, nil
}

// LatestByThreads retrieves the most recent mail of each thread, newest first
func (r *messageRepository) LatestByThreads(ctx context.Context, threadIDs []uint) ([]models.Message, error) {
	if len(threadIDs) == 0 {
		return nil, nil
	}
	var messages []models.Message
	result := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("thread_id IN ?", threadIDs).
		Where(`id = (
			SELECT latest.id FROM mails latest
			WHERE latest.thread_id = mails.thread_id
			ORDER BY latest.created_at DESC, latest.id DESC
			LIMIT 1
		)`).
		Order("created_at DESC").Order("id DESC").
		Find(&messages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list latest messages: %w", result.Error)
	}
	return messages, nil
}

// ListSent retrieves the mails a user sent and has not hidden, newest first
func (r *messageRepository) ListSent(ctx context.Context, senderID uint) ([]models.Message, error) {
	var messages []models.Message
	result := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("sender_id = ? AND sender_deleted = ?", senderID, false).
		Order("created_at DESC").Order("id DESC").
		Find(&messages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list sent messages: %w", result.Error)
	}
	return messages, nil
}

// SenderIDsInThread returns every distinct sender of a thread
func (r *messageRepository) SenderIDsInThread(ctx context.Context, threadID uint) ([]uint, error) {
	var ids []uint
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("thread_id = ?", threadID).
		Distinct().
		Pluck("sender_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list thread senders: %w", result.Error)
	}
	return ids, nil
}

// MarkSenderDeletedInThread flips sender_deleted on every mail the user sent in the thread
func (r *messageRepository) MarkSenderDeletedInThread(ctx context.Context, threadID, senderID uint) (int64, error) {
	var hidden models.Message
	hidden.MarkSenderDeleted()

	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("thread_id = ? AND sender_id = ?", threadID, senderID).
		Update(models.ColumnSenderDeleted, hidden.SenderDeleted)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark sender deleted: %w", result.Error)
	}
	return result.RowsAffected, nil
}
