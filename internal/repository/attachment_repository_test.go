package repository

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/projecthub-backend/internal/models"
)

func (s *RepositoryTestSuite) TestAttachment_CreateBatch_BindsMail() {
	_, mail := s.createThreadWithMail(1, "Files", "body", 2)

	attachments := []models.Attachment{
		{OriginalName: "plan.pdf", FileName: "a.pdf", FilePath: "documents/a.pdf", MimeType: "application/pdf", FileSize: 100},
		{OriginalName: "photo.png", FileName: "b.png", FilePath: "images/b.png", MimeType: "image/png", FileSize: 200},
	}
	require.NoError(s.T(), s.store.Attachments.CreateBatch(s.ctx, mail.ID, attachments))

	for _, a := range attachments {
		assert.NotZero(s.T(), a.ID)
		assert.Equal(s.T(), mail.ID, a.MessageID)
	}

	listed, err := s.store.Attachments.ListByMessages(s.ctx, []uint{mail.ID})
	require.NoError(s.T(), err)
	require.Len(s.T(), listed, 2)
	assert.Equal(s.T(), "plan.pdf", listed[0].OriginalName)
	assert.Equal(s.T(), "photo.png", listed[1].OriginalName)
}

func (s *RepositoryTestSuite) TestAttachment_CreateBatch_EmptyIsNoop() {
	_, mail := s.createThreadWithMail(1, "Empty", "body", 2)

	require.NoError(s.T(), s.store.Attachments.CreateBatch(s.ctx, mail.ID, nil))

	listed, err := s.store.Attachments.ListByMessages(s.ctx, []uint{mail.ID})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), listed)
}

func (s *RepositoryTestSuite) TestAttachment_GetByID() {
	_, mail := s.createThreadWithMail(1, "One", "body", 2)
	attachments := []models.Attachment{
		{OriginalName: "notes.txt", FileName: "n.txt", FilePath: "documents/n.txt", MimeType: "text/plain", FileSize: 5},
	}
	require.NoError(s.T(), s.store.Attachments.CreateBatch(s.ctx, mail.ID, attachments))

	found, err := s.store.Attachments.GetByID(s.ctx, attachments[0].ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "notes.txt", found.OriginalName)

	_, err = s.store.Attachments.GetByID(s.ctx, attachments[0].ID+1000)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}
