package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/welldanyogia/projecthub-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ThreadRepository defines the interface for thread data access.
// Threads are never updated or deleted.
type ThreadRepository interface {
	Create(ctx context.Context, thread *models.Thread) error
	GetByID(ctx context.Context, id uint) (*models.Thread, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context) ([]models.Thread, error)
}

// threadRepository implements ThreadRepository using GORM
type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new ThreadRepository instance
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

// Create creates a new thread
func (r *threadRepository) Create(ctx context.Context, thread *models.Thread) error {
	result := r.db.WithContext(ctx).Omit(clause.Associations).Create(thread)
	if result.Error != nil {
		return fmt.Errorf("failed to create thread: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a thread by its ID
func (r *threadRepository) GetByID(ctx context.Context, id uint) (*models.Thread, error) {
	var thread models.Thread
	result := r.db.WithContext(ctx).First(&thread, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get thread by ID: %w", result.Error)
	}
	return &thread, nil
}

// Exists reports whether a thread with the given ID exists
func (r *threadRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Thread{}).Where("id = ?", id).Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check thread: %w", result.Error)
	}
	return count > 0, nil
}

// List retrieves all threads, newest first
func (r *threadRepository) List(ctx context.Context) ([]models.Thread, error) {
	var threads []models.Thread
	result := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&threads)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list threads: %w", result.Error)
	}
	return threads, nil
}
