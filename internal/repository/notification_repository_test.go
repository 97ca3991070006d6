package repository

import (
	"fmt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/projecthub-backend/internal/models"
)

func uintPtr(v uint) *uint {
	return &v
}

func (s *RepositoryTestSuite) TestNotification_ListForUser_OwnAndBroadcast() {
	require.NoError(s.T(), s.store.Notifications.CreateBatch(s.ctx, []models.Notification{
		{UserID: uintPtr(1), Title: "mine", Type: models.NotificationTypeAnnouncement},
		{UserID: uintPtr(2), Title: "theirs", Type: models.NotificationTypeAnnouncement},
		{UserID: nil, Title: "everyone", Type: models.NotificationTypeAnnouncement},
	}))

	list, err := s.store.Notifications.ListForUser(s.ctx, 1, false, 0)
	require.NoError(s.T(), err)

	titles := make([]string, 0, len(list))
	for _, n := range list {
		titles = append(titles, n.Title)
	}
	assert.ElementsMatch(s.T(), []string{"mine", "everyone"}, titles)

	all, err := s.store.Notifications.ListForUser(s.ctx, 1, true, 0)
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 3)
}

func (s *RepositoryTestSuite) TestNotification_ListForUser_RespectsLimit() {
	rows := make([]models.Notification, 0, 5)
	for i := 0; i < 5; i++ {
		rows = append(rows, models.Notification{UserID: uintPtr(1), Title: fmt.Sprintf("n%d", i)})
	}
	require.NoError(s.T(), s.store.Notifications.CreateBatch(s.ctx, rows))

	list, err := s.store.Notifications.ListForUser(s.ctx, 1, false, 3)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 3)
	assert.Equal(s.T(), "n4", list[0].Title)
}

func (s *RepositoryTestSuite) TestNotification_MarkRead() {
	rows := []models.Notification{
		{UserID: uintPtr(1), Title: "mine"},
		{UserID: uintPtr(2), Title: "theirs"},
	}
	require.NoError(s.T(), s.store.Notifications.CreateBatch(s.ctx, rows))

	require.NoError(s.T(), s.store.Notifications.MarkRead(s.ctx, rows[0].ID, 1))

	count, err := s.store.Notifications.CountUnread(s.ctx, 1)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), count)

	err = s.store.Notifications.MarkRead(s.ctx, rows[1].ID, 1)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *RepositoryTestSuite) TestNotification_CountUnread_IncludesBroadcast() {
	require.NoError(s.T(), s.store.Notifications.CreateBatch(s.ctx, []models.Notification{
		{UserID: uintPtr(1), Title: "a"},
		{UserID: nil, Title: "b"},
		{UserID: uintPtr(3), Title: "c"},
	}))

	count, err := s.store.Notifications.CountUnread(s.ctx, 1)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), count)
}

func (s *RepositoryTestSuite) TestNotification_NotifiedUserIDs() {
	require.NoError(s.T(), s.store.Notifications.CreateBatch(s.ctx, []models.Notification{
		{UserID: uintPtr(1), Title: "started", Type: models.NotificationTypeProjectStarted, EntityType: "Project", EntityID: 7},
		{UserID: uintPtr(2), Title: "started", Type: models.NotificationTypeProjectStarted, EntityType: "Project", EntityID: 8},
		{UserID: uintPtr(3), Title: "mail", Type: models.NotificationTypeMailReceived, EntityType: "Project", EntityID: 7},
	}))

	ids, err := s.store.Notifications.NotifiedUserIDs(s.ctx, models.NotificationTypeProjectStarted, "Project", 7, []uint{1, 2, 3})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []uint{1}, ids)

	ids, err = s.store.Notifications.NotifiedUserIDs(s.ctx, models.NotificationTypeProjectStarted, "Project", 7, nil)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), ids)
}
