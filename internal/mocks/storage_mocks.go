package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/projecthub-backend/internal/models"
	"github.com/welldanyogia/projecthub-backend/internal/storage"
)

// MockFileStorage implements storage.FileStorage
type MockFileStorage struct {
	mock.Mock
}

// Save stores an upload. The body is drained so callers see it consumed.
func (m *MockFileStorage) Save(upload storage.Upload) (models.Attachment, error) {
	if upload.Content != nil {
		_, _ = io.Copy(io.Discard, upload.Content)
	}
	args := m.Called(upload.Name, upload.MimeType)
	return args.Get(0).(models.Attachment), args.Error(1)
}

// Open opens a stored file
func (m *MockFileStorage) Open(filePath string) (io.ReadCloser, error) {
	args := m.Called(filePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// Delete removes a stored file
func (m *MockFileStorage) Delete(filePath string) error {
	args := m.Called(filePath)
	return args.Error(0)
}

// MockAttachmentRepository implements repository.AttachmentRepository
type MockAttachmentRepository struct {
	mock.Mock
}

// CreateBatch inserts attachment rows
func (m *MockAttachmentRepository) CreateBatch(ctx context.Context, messageID uint, attachments []models.Attachment) error {
	args := m.Called(ctx, messageID, attachments)
	return args.Error(0)
}

// GetByID retrieves an attachment
func (m *MockAttachmentRepository) GetByID(ctx context.Context, id uint) (*models.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attachment), args.Error(1)
}

// ListByMessages lists the attachments of several mails
func (m *MockAttachmentRepository) ListByMessages(ctx context.Context, messageIDs []uint) ([]models.Attachment, error) {
	args := m.Called(ctx, messageIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attachment), args.Error(1)
}
