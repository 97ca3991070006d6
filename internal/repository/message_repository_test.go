package repository

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/projecthub-backend/internal/models"
)

// ==================== Create / Get Tests ====================

func (s *RepositoryTestSuite) TestMessage_Create_DefaultsSenderDeletedFalse() {
	_, mail := s.createThreadWithMail(1, "Subject", "body", 2)

	found, err := s.store.Messages.GetByID(s.ctx, mail.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), found.SenderDeleted)
	assert.Equal(s.T(), "body", found.Body)
	assert.NotZero(s.T(), found.CreatedAt)
}

func (s *RepositoryTestSuite) TestMessage_GetByID_NotFound() {
	found, err := s.store.Messages.GetByID(s.ctx, 424242)
	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.Nil(s.T(), found)
}

func (s *RepositoryTestSuite) TestMessage_GetWithThread_LoadsThread() {
	thread, mail := s.createThreadWithMail(1, "Parent", "body", 2)

	found, err := s.store.Messages.GetWithThread(s.ctx, mail.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), thread.ID, found.Thread.ID)
	assert.Equal(s.T(), "Parent", found.Thread.Subject)
}

func (s *RepositoryTestSuite) TestMessage_GetByID_PreloadsAttachments() {
	_, mail := s.createThreadWithMail(1, "Files", "body", 2)
	require.NoError(s.T(), s.store.Attachments.CreateBatch(s.ctx, mail.ID, []models.Attachment{
		{OriginalName: "a.pdf", FileName: "x.pdf", FilePath: "documents/x.pdf", MimeType: "application/pdf", FileSize: 10},
	}))

	found, err := s.store.Messages.GetByID(s.ctx, mail.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), found.Attachments, 1)
	assert.Equal(s.T(), "a.pdf", found.Attachments[0].OriginalName)
}

// ==================== Thread Listing Tests ====================

func (s *RepositoryTestSuite) TestMessage_ListByThread_AscendingOrder() {
	thread, first := s.createThreadWithMail(1, "Chain", "first", 2)
	second := s.addMail(thread, 2, "second", 1)
	third := s.addMail(thread, 1, "third", 2)

	mails, err := s.store.Messages.ListByThread(s.ctx, thread.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), mails, 3)
	assert.Equal(s.T(), []uint{first.ID, second.ID, third.ID}, []uint{mails[0].ID, mails[1].ID, mails[2].ID})
}

func (s *RepositoryTestSuite) TestMessage_ListByThread_IgnoresDeleteFlags() {
	thread, _ := s.createThreadWithMail(1, "Flags", "first", 2)
	s.addMail(thread, 2, "second", 1)

	_, err := s.store.Messages.MarkSenderDeletedInThread(s.ctx, thread.ID, 1)
	require.NoError(s.T(), err)
	_, err = s.store.Recipients.MarkDeletedInThread(s.ctx, thread.ID, 2)
	require.NoError(s.T(), err)

	mails, err := s.store.Messages.ListByThread(s.ctx, thread.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), mails, 2)
}

func (s *RepositoryTestSuite) TestMessage_LatestByThreads_OnePerThread() {
	a, _ := s.createThreadWithMail(1, "A", "a1", 2)
	latestA := s.addMail(a, 2, "a2", 1)
	b, latestB := s.createThreadWithMail(3, "B", "b1", 2)

	mails, err := s.store.Messages.LatestByThreads(s.ctx, []uint{a.ID, b.ID})
	require.NoError(s.T(), err)
	require.Len(s.T(), mails, 2)

	byThread := map[uint]uint{}
	for _, m := range mails {
		byThread[m.ThreadID] = m.ID
	}
	assert.Equal(s.T(), latestA.ID, byThread[a.ID])
	assert.Equal(s.T(), latestB.ID, byThread[b.ID])
}

func (s *RepositoryTestSuite) TestMessage_ListSent_ExcludesSenderDeleted() {
	kept, _ := s.createThreadWithMail(1, "Kept", "a", 2)
	hidden, _ := s.createThreadWithMail(1, "Hidden", "b", 2)

	_, err := s.store.Messages.MarkSenderDeletedInThread(s.ctx, hidden.ID, 1)
	require.NoError(s.T(), err)

	sent, err := s.store.Messages.ListSent(s.ctx, 1)
	require.NoError(s.T(), err)
	require.Len(s.T(), sent, 1)
	assert.Equal(s.T(), kept.ID, sent[0].ThreadID)
}

func (s *RepositoryTestSuite) TestMessage_SenderIDsInThread_Distinct() {
	thread, _ := s.createThreadWithMail(1, "Senders", "a", 2)
	s.addMail(thread, 2, "b", 1)
	s.addMail(thread, 1, "c", 2)

	ids, err := s.store.Messages.SenderIDsInThread(s.ctx, thread.ID)
	require.NoError(s.T(), err)
	assert.ElementsMatch(s.T(), []uint{1, 2}, ids)
}

func (s *RepositoryTestSuite) TestMessage_MarkSenderDeletedInThread_OnlyOwnMails() {
	thread, mine := s.createThreadWithMail(1, "Mine", "a", 2)
	theirs := s.addMail(thread, 2, "b", 1)

	affected, err := s.store.Messages.MarkSenderDeletedInThread(s.ctx, thread.ID, 1)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), affected)

	reloadedMine, _ := s.store.Messages.GetByID(s.ctx, mine.ID)
	reloadedTheirs, _ := s.store.Messages.GetByID(s.ctx, theirs.ID)
	assert.True(s.T(), reloadedMine.SenderDeleted)
	assert.False(s.T(), reloadedTheirs.SenderDeleted)
}
