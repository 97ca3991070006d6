package repository

import (
	"context"
	"fmt"

	"github.com/welldanyogia/projecthub-backend/internal/models"
	"gorm.io/gorm"
)

// DefaultNotificationLimit caps notification list queries
const DefaultNotificationLimit = 50

// NotificationRepository defines the interface for notification data access.
// Notifications are append-only; the read flag is the only mutable column.
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	ListForUser(ctx context.Context, userID uint, includeAll bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
	NotifiedUserIDs(ctx context.Context, notificationType, entityType string, entityID uint, userIDs []uint) ([]uint, error)
}

// notificationRepository implements NotificationRepository using GORM
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository instance
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// CreateBatch inserts the rows of one fan-out in a single transaction
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Create(&notifications)
	if result.Error != nil {
		return fmt.Errorf("failed to create notifications: %w", result.Error)
	}
	return nil
}

// ListForUser retrieves the user's own and broadcast notifications, newest first.
// With includeAll every notification is returned.
func (r *notificationRepository) ListForUser(ctx context.Context, userID uint, includeAll bool, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}

	query := r.db.WithContext(ctx).Model(&models.Notification{})
	if !includeAll {
		query = query.Where("user_id = ? OR user_id IS NULL", userID)
	}

	var notifications []models.Notification
	result := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&notifications)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", result.Error)
	}
	return notifications, nil
}

// MarkRead flags a notification visible to the user as read
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uint) error {
	var row models.Notification
	row.MarkRead()

	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND (user_id = ? OR user_id IS NULL)", id, userID).
		Update(models.ColumnNotificationRead, row.IsRead)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnread counts unread notifications visible to the user
func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("(user_id = ? OR user_id IS NULL) AND is_read = ?", userID, false).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", result.Error)
	}
	return count, nil
}

// NotifiedUserIDs returns which of userIDs already hold a notification of the
// given type about the entity
func (r *notificationRepository) NotifiedUserIDs(ctx context.Context, notificationType, entityType string, entityID uint, userIDs []uint) ([]uint, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("type = ? AND entity_type = ? AND entity_id = ?", notificationType, entityType, entityID).
		Where("user_id IN ?", userIDs).
		Distinct().
		Pluck("user_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list notified users: %w", result.Error)
	}
	return ids, nil
}
