package repository

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/projecthub-backend/internal/models"
)

func (s *RepositoryTestSuite) TestThread_CreateAndGet() {
	thread := &models.Thread{Subject: "Kickoff", CreatedBy: 7}
	require.NoError(s.T(), s.store.Threads.Create(s.ctx, thread))
	assert.NotZero(s.T(), thread.ID)
	assert.NotZero(s.T(), thread.CreatedAt)

	found, err := s.store.Threads.GetByID(s.ctx, thread.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Kickoff", found.Subject)
	assert.Equal(s.T(), uint(7), found.CreatedBy)
}

func (s *RepositoryTestSuite) TestThread_GetByID_NotFound() {
	found, err := s.store.Threads.GetByID(s.ctx, 99999)
	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.Nil(s.T(), found)
}

func (s *RepositoryTestSuite) TestThread_Exists() {
	thread, _ := s.createThreadWithMail(1, "Exists", "body", 2)

	exists, err := s.store.Threads.Exists(s.ctx, thread.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), exists)

	exists, err = s.store.Threads.Exists(s.ctx, thread.ID+100)
	require.NoError(s.T(), err)
	assert.False(s.T(), exists)
}

func (s *RepositoryTestSuite) TestThread_List_NewestFirst() {
	first, _ := s.createThreadWithMail(1, "First", "a", 2)
	second, _ := s.createThreadWithMail(1, "Second", "b", 2)

	threads, err := s.store.Threads.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), threads, 2)
	assert.Equal(s.T(), second.ID, threads[0].ID)
	assert.Equal(s.T(), first.ID, threads[1].ID)
}
