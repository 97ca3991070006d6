package repository

import (
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/projecthub-backend/internal/models"
)

// recipientRow loads the recipient row of a user for a mail
func (s *RepositoryTestSuite) recipientRow(mailID, userID uint) models.Recipient {
	var row models.Recipient
	require.NoError(s.T(), s.db.Where("mail_id = ? AND recipient_id = ?", mailID, userID).First(&row).Error)
	return row
}

func (s *RepositoryTestSuite) TestRecipient_CreateBatch_DefaultFlags() {
	_, mail := s.createThreadWithMail(1, "Flags", "body", 2, 3)

	rows, err := s.store.Recipients.ListByMessages(s.ctx, []uint{mail.ID})
	require.NoError(s.T(), err)
	require.Len(s.T(), rows, 2)
	for _, row := range rows {
		assert.False(s.T(), row.IsRead)
		assert.False(s.T(), row.IsDeleted)
		assert.Nil(s.T(), row.ReadAt)
	}
}

func (s *RepositoryTestSuite) TestRecipient_RecipientIDsInThread_Distinct() {
	thread, _ := s.createThreadWithMail(1, "Audience", "a", 2, 3)
	s.addMail(thread, 2, "b", 1, 3)

	ids, err := s.store.Recipients.RecipientIDsInThread(s.ctx, thread.ID)
	require.NoError(s.T(), err)
	assert.ElementsMatch(s.T(), []uint{1, 2, 3}, ids)
}

func (s *RepositoryTestSuite) TestRecipient_RecipientIDsInThread_KeepsDeletedParticipants() {
	thread, _ := s.createThreadWithMail(1, "Sticky", "a", 2, 3)

	_, err := s.store.Recipients.MarkDeletedInThread(s.ctx, thread.ID, 3)
	require.NoError(s.T(), err)

	ids, err := s.store.Recipients.RecipientIDsInThread(s.ctx, thread.ID)
	require.NoError(s.T(), err)
	assert.ElementsMatch(s.T(), []uint{2, 3}, ids)
}

func (s *RepositoryTestSuite) TestRecipient_MarkRead_SetsTimestamp() {
	_, mail := s.createThreadWithMail(1, "Read", "body", 2)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	affected, err := s.store.Recipients.MarkRead(s.ctx, mail.ID, 2, at)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), affected)

	row := s.recipientRow(mail.ID, 2)
	assert.True(s.T(), row.IsRead)
	require.NotNil(s.T(), row.ReadAt)
	assert.True(s.T(), at.Equal(*row.ReadAt))
}

func (s *RepositoryTestSuite) TestRecipient_MarkRead_MissingRowAffectsNothing() {
	_, mail := s.createThreadWithMail(1, "Nobody", "body", 2)

	affected, err := s.store.Recipients.MarkRead(s.ctx, mail.ID, 42, time.Now())
	require.NoError(s.T(), err)
	assert.Zero(s.T(), affected)
}

func (s *RepositoryTestSuite) TestRecipient_InboxThreadIDs_ExcludesDeleted() {
	visible, _ := s.createThreadWithMail(1, "Visible", "a", 2)
	hidden, _ := s.createThreadWithMail(1, "Hidden", "b", 2)

	_, err := s.store.Recipients.MarkDeletedInThread(s.ctx, hidden.ID, 2)
	require.NoError(s.T(), err)

	ids, err := s.store.Recipients.InboxThreadIDs(s.ctx, 2)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []uint{visible.ID}, ids)
}

func (s *RepositoryTestSuite) TestRecipient_MarkDeletedInThread_Idempotent() {
	thread, first := s.createThreadWithMail(1, "Twice", "a", 2)
	second := s.addMail(thread, 1, "b", 2)

	affected, err := s.store.Recipients.MarkDeletedInThread(s.ctx, thread.ID, 2)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), affected)

	_, err = s.store.Recipients.MarkDeletedInThread(s.ctx, thread.ID, 2)
	require.NoError(s.T(), err)

	for _, id := range []uint{first.ID, second.ID} {
		assert.True(s.T(), s.recipientRow(id, 2).IsDeleted)
	}
}

func (s *RepositoryTestSuite) TestRecipient_MarkDeletedInThread_LeavesOtherThreads() {
	target, _ := s.createThreadWithMail(1, "Target", "a", 2)
	_, other := s.createThreadWithMail(1, "Other", "b", 2)

	_, err := s.store.Recipients.MarkDeletedInThread(s.ctx, target.ID, 2)
	require.NoError(s.T(), err)

	assert.False(s.T(), s.recipientRow(other.ID, 2).IsDeleted)
}
