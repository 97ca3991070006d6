// Package mocks holds testify mocks of the service and storage interfaces
// used by the HTTP handler tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/projecthub-backend/internal/models"
	"github.com/welldanyogia/projecthub-backend/internal/services"
)

// MockMailService implements services.MailService
type MockMailService struct {
	mock.Mock
}

// Send sends a new mail
func (m *MockMailService) Send(ctx context.Context, input services.SendInput) (*services.DeliveryResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DeliveryResult), args.Error(1)
}

// Reply replies within a thread
func (m *MockMailService) Reply(ctx context.Context, input services.ReplyInput) (*services.DeliveryResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DeliveryResult), args.Error(1)
}

// MarkRead marks the user's copy read
func (m *MockMailService) MarkRead(ctx context.Context, userID, messageID uint) error {
	args := m.Called(ctx, userID, messageID)
	return args.Error(0)
}

// DeleteConversation hides a thread for the user
func (m *MockMailService) DeleteConversation(ctx context.Context, userID, threadID uint) error {
	args := m.Called(ctx, userID, threadID)
	return args.Error(0)
}

// Inbox lists received threads
func (m *MockMailService) Inbox(ctx context.Context, userID uint) ([]models.InboxItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InboxItem), args.Error(1)
}

// Sent lists sent mails
func (m *MockMailService) Sent(ctx context.Context, userID uint) ([]models.SentItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SentItem), args.Error(1)
}

// ThreadDetail returns a thread's history
func (m *MockMailService) ThreadDetail(ctx context.Context, messageID uint) (*models.ThreadDetail, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ThreadDetail), args.Error(1)
}

// AllThreads lists every thread
func (m *MockMailService) AllThreads(ctx context.Context) ([]models.AdminThread, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdminThread), args.Error(1)
}

// SuggestRecipients searches users
func (m *MockMailService) SuggestRecipients(ctx context.Context, userID uint, query string, limit int) ([]models.UserSuggestion, error) {
	args := m.Called(ctx, userID, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserSuggestion), args.Error(1)
}

// MockNotifier implements services.Notifier
type MockNotifier struct {
	mock.Mock
}

// Notify records a notification
func (m *MockNotifier) Notify(ctx context.Context, input services.NotifyInput) ([]models.Notification, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

// List lists notifications
func (m *MockNotifier) List(ctx context.Context, userID uint, includeAll bool) ([]models.Notification, error) {
	args := m.Called(ctx, userID, includeAll)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

// MarkRead marks a notification read
func (m *MockNotifier) MarkRead(ctx context.Context, id, userID uint) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// UnreadCount counts unread notifications
func (m *MockNotifier) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockRoleChecker implements middleware.RoleChecker
type MockRoleChecker struct {
	mock.Mock
}

// UserHasRole reports whether the user holds roleName
func (m *MockRoleChecker) UserHasRole(ctx context.Context, userID uint, roleName string) (bool, error) {
	args := m.Called(ctx, userID, roleName)
	return args.Bool(0), args.Error(1)
}

// MockAudienceResolver implements handlers.AudienceResolver
type MockAudienceResolver struct {
	mock.Mock
}

// ProjectAudience returns the project audience without the actor
func (m *MockAudienceResolver) ProjectAudience(ctx context.Context, projectID, actorID uint) ([]uint, error) {
	args := m.Called(ctx, projectID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}
