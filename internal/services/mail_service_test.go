package services

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/welldanyogia/projecthub-backend/internal/errors"
	"github.com/welldanyogia/projecthub-backend/internal/models"
	"github.com/welldanyogia/projecthub-backend/internal/websocket"
)

func (s *ServicesTestSuite) send(svc MailService, sender uint, subject, body string, to ...uint) *DeliveryResult {
	result, err := svc.Send(s.ctx, SendInput{SenderID: sender, Subject: subject, Body: body, RecipientIDs: to})
	require.NoError(s.T(), err)
	return result
}

func (s *ServicesTestSuite) reply(svc MailService, sender, parent uint, body string) *DeliveryResult {
	result, err := svc.Reply(s.ctx, ReplyInput{SenderID: sender, ParentMessageID: parent, Body: body})
	require.NoError(s.T(), err)
	return result
}

// ==================== Send Tests ====================

func (s *ServicesTestSuite) TestSend_CreatesThreadMailAndDeduplicatedRecipients() {
	svc := s.newMailService(nil)

	result := s.send(svc, userAlice, "Kickoff", "Welcome aboard", userBob, userCarol, userCarol, userAlice)

	assert.Equal(s.T(), []uint{userBob, userCarol}, result.RecipientIDs)
	assert.EqualValues(s.T(), 1, s.count(&models.Thread{}, "id = ?", result.ThreadID))
	assert.EqualValues(s.T(), 1, s.count(&models.Message{}, "thread_id = ?", result.ThreadID))
	assert.Equal(s.T(), []uint{userBob, userCarol}, s.recipientIDs(result.MailID))

	var thread models.Thread
	require.NoError(s.T(), s.db.First(&thread, result.ThreadID).Error)
	assert.Equal(s.T(), "Kickoff", thread.Subject)
	assert.Equal(s.T(), userAlice, thread.CreatedBy)
}

func (s *ServicesTestSuite) TestSend_ValidationRejectsBeforeWriting() {
	svc := s.newMailService(nil)

	tests := []struct {
		name  string
		input SendInput
	}{
		{"missing subject", SendInput{SenderID: userAlice, Subject: "  ", Body: "hi", RecipientIDs: []uint{userBob}}},
		{"missing body", SendInput{SenderID: userAlice, Subject: "Hi", Body: "", RecipientIDs: []uint{userBob}}},
		{"missing recipients", SendInput{SenderID: userAlice, Subject: "Hi", Body: "hi"}},
		{"only the sender", SendInput{SenderID: userAlice, Subject: "Hi", Body: "hi", RecipientIDs: []uint{userAlice}}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := svc.Send(s.ctx, tt.input)
			assert.True(s.T(), apperrors.IsInvalidInput(err))
		})
	}

	assert.EqualValues(s.T(), 0, s.count(&models.Thread{}, ""))
	assert.Empty(s.T(), s.publisher.all())
}

func (s *ServicesTestSuite) TestSend_PushesAfterCommit() {
	svc := s.newMailService(nil)

	result := s.send(svc, userAlice, "Kickoff", "Welcome aboard", userBob, userCarol)

	for _, id := range []uint{userBob, userCarol} {
		received := s.publisher.mailEvents(id, websocket.EventMailReceived)
		require.Len(s.T(), received, 1)
		assert.Equal(s.T(), result.MailID, received[0].MailID)
		assert.Equal(s.T(), result.ThreadID, received[0].ThreadID)
		assert.Equal(s.T(), "Alice", received[0].SenderName)
		assert.Equal(s.T(), "alice@example.com", received[0].SenderEmail)
		assert.Equal(s.T(), "Welcome aboard", received[0].Preview)

		updates := s.publisher.mailEvents(id, websocket.EventMailUpdate)
		require.Len(s.T(), updates, 1)
		assert.Equal(s.T(), ActionReceived, updates[0].Action)
	}

	sent := s.publisher.mailEvents(userAlice, websocket.EventMailSent)
	require.Len(s.T(), sent, 1)
	assert.Equal(s.T(), result.MailID, sent[0].MailID)

	updates := s.publisher.mailEvents(userAlice, websocket.EventMailUpdate)
	require.Len(s.T(), updates, 1)
	assert.Equal(s.T(), ActionSent, updates[0].Action)

	assert.Empty(s.T(), s.publisher.mailEvents(userAlice, websocket.EventMailReceived))
}

func (s *ServicesTestSuite) TestSend_PreviewIsTruncated() {
	svc := s.newMailService(nil)
	body := strings.Repeat("é", models.PreviewLength+30)

	s.send(svc, userAlice, "Long", body, userBob)

	received := s.publisher.mailEvents(userBob, websocket.EventMailReceived)
	require.Len(s.T(), received, 1)
	assert.Equal(s.T(), models.PreviewLength, len([]rune(received[0].Preview)))
}

func (s *ServicesTestSuite) TestSend_StoresAttachments() {
	svc := s.newMailService(nil)

	result, err := svc.Send(s.ctx, SendInput{
		SenderID:     userAlice,
		Subject:      "Specs",
		Body:         "See attached",
		RecipientIDs: []uint{userBob},
		Attachments: []models.Attachment{
			{OriginalName: "plan.pdf", FileName: "a.pdf", FilePath: "uploads/documents/a.pdf", MimeType: "application/pdf", FileSize: 10},
			{OriginalName: "logo.png", FileName: "b.png", FilePath: "uploads/images/b.png", MimeType: "image/png", FileSize: 20},
		},
	})
	require.NoError(s.T(), err)

	assert.EqualValues(s.T(), 2, s.count(&models.Attachment{}, "mail_id = ?", result.MailID))
}

func (s *ServicesTestSuite) TestSend_RollsBackWhenAttachmentInsertFails() {
	svc := s.newMailService(nil)
	s.failTable.Store("mail_attachments")

	_, err := svc.Send(s.ctx, SendInput{
		SenderID:     userAlice,
		Subject:      "Broken",
		Body:         "never stored",
		RecipientIDs: []uint{userBob, userCarol},
		Attachments:  []models.Attachment{{OriginalName: "x.pdf", FileName: "x.pdf", FilePath: "uploads/documents/x.pdf"}},
	})

	require.Error(s.T(), err)
	assert.Equal(s.T(), apperrors.CodeDeliveryFailed, apperrors.GetErrorCode(err))
	assert.Equal(s.T(), "mail sending failed", err.Error())
	assert.NotContains(s.T(), err.Error(), errInjected.Error())

	assert.EqualValues(s.T(), 0, s.count(&models.Thread{}, "subject = ?", "Broken"))
	assert.EqualValues(s.T(), 0, s.count(&models.Message{}, "subject = ?", "Broken"))
	assert.EqualValues(s.T(), 0, s.count(&models.Recipient{}, ""))
	assert.Empty(s.T(), s.publisher.all())
}

func (s *ServicesTestSuite) TestSend_SucceedsWhenPushPanics() {
	svc := NewMailService(s.store, s.resolver, MailServiceConfig{
		Publisher: panickingPublisher{},
		Logger:    s.logger,
	})

	result, err := svc.Send(s.ctx, SendInput{SenderID: userAlice, Subject: "Hi", Body: "hello", RecipientIDs: []uint{userBob}})

	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 1, s.count(&models.Message{}, "id = ?", result.MailID))
}

func (s *ServicesTestSuite) TestSend_RecordsMailNotifications() {
	relay := newFakeRelay()
	svc := s.newMailService(s.newNotifier(relay))

	result := s.send(svc, userAlice, "Kickoff", "Welcome aboard", userBob, userCarol)

	var rows []models.Notification
	require.NoError(s.T(), s.db.Order("user_id ASC").Find(&rows).Error)
	require.Len(s.T(), rows, 2)
	for i, id := range []uint{userBob, userCarol} {
		require.NotNil(s.T(), rows[i].UserID)
		assert.Equal(s.T(), id, *rows[i].UserID)
		assert.Equal(s.T(), models.NotificationTypeMailReceived, rows[i].Type)
		assert.Equal(s.T(), result.MailID, rows[i].EntityID)
		assert.Equal(s.T(), "New mail from Alice", rows[i].Title)
	}

	s.reply(svc, userBob, result.MailID, "Thanks")
	assert.EqualValues(s.T(), 4, s.count(&models.Notification{}, ""))

	select {
	case <-relay.done:
		s.T().Fatal("mail notifications must stay off the e-mail relay")
	case <-time.After(100 * time.Millisecond):
	}
}

func (s *ServicesTestSuite) TestSend_WithoutNotifierRecordsNoNotifications() {
	svc := s.newMailService(nil)

	s.send(svc, userAlice, "Kickoff", "Welcome aboard", userBob)

	assert.Zero(s.T(), s.count(&models.Notification{}, ""))
}

func (s *ServicesTestSuite) TestMailEvents_CreatedAtOnlyWhenKnown() {
	svc := s.newMailService(nil)
	result := s.send(svc, userAlice, "Kickoff", "Welcome aboard", userBob)
	require.NoError(s.T(), svc.MarkRead(s.ctx, userBob, result.MailID))

	sent := s.publisher.mailEvents(userAlice, websocket.EventMailSent)
	require.Len(s.T(), sent, 1)
	require.NotNil(s.T(), sent[0].CreatedAt)
	assert.False(s.T(), sent[0].CreatedAt.IsZero())

	read := s.publisher.mailEvents(userBob, websocket.EventMailRead)
	require.Len(s.T(), read, 1)
	payload, err := json.Marshal(read[0])
	require.NoError(s.T(), err)
	assert.NotContains(s.T(), string(payload), "created_at")
}

// ==================== Reply Tests ====================

func (s *ServicesTestSuite) TestReply_AudienceIsEveryOtherParticipant() {
	svc := s.newMailService(nil)

	first := s.send(svc, userAlice, "Kickoff", "Welcome", userBob, userCarol)
	s.reply(svc, userCarol, first.MailID, "Thanks")
	s.reply(svc, userAlice, first.MailID, "You're welcome")

	result := s.reply(svc, userBob, first.MailID, "Sounds good")

	assert.Equal(s.T(), []uint{userAlice, userCarol}, result.RecipientIDs)
	assert.Equal(s.T(), []uint{userAlice, userCarol}, s.recipientIDs(result.MailID))
	assert.Equal(s.T(), first.ThreadID, result.ThreadID)
}

func (s *ServicesTestSuite) TestReply_ReusesThreadSubject() {
	svc := s.newMailService(nil)
	first := s.send(svc, userAlice, "Kickoff", "Welcome", userBob)

	result := s.reply(svc, userBob, first.MailID, "Thanks")

	var mail models.Message
	require.NoError(s.T(), s.db.First(&mail, result.MailID).Error)
	assert.Equal(s.T(), "Kickoff", mail.Subject)
	assert.Equal(s.T(), first.ThreadID, mail.ThreadID)
	assert.EqualValues(s.T(), 1, s.count(&models.Thread{}, ""))
}

func (s *ServicesTestSuite) TestReply_KeepsFormerParticipants() {
	svc := s.newMailService(nil)
	first := s.send(svc, userAlice, "Kickoff", "Welcome", userBob, userDave)
	require.NoError(s.T(), svc.DeleteConversation(s.ctx, userDave, first.ThreadID))

	result := s.reply(svc, userBob, first.MailID, "Thanks")

	assert.Equal(s.T(), []uint{userAlice, userDave}, result.RecipientIDs)
}

func (s *ServicesTestSuite) TestReply_PushesRepliedAndUpdateEvents() {
	svc := s.newMailService(nil)
	first := s.send(svc, userAlice, "Kickoff", "Welcome", userBob, userCarol)
	s.publisher.records = nil

	result := s.reply(svc, userBob, first.MailID, "Sounds good")

	for _, id := range []uint{userAlice, userCarol} {
		replied := s.publisher.mailEvents(id, websocket.EventMailReplied)
		require.Len(s.T(), replied, 1)
		assert.Equal(s.T(), result.MailID, replied[0].MailID)
		assert.Equal(s.T(), "Sounds good", replied[0].Preview)
		assert.Equal(s.T(), "Bob", replied[0].SenderName)
		assert.False(s.T(), replied[0].Self)
	}

	self := s.publisher.mailEvents(userBob, websocket.EventMailReplied)
	require.Len(s.T(), self, 1)
	assert.True(s.T(), self[0].Self)

	assert.ElementsMatch(s.T(), []uint{userBob, userAlice, userCarol}, s.publisher.recipientsOf(websocket.EventMailUpdate))
}

func (s *ServicesTestSuite) TestReply_UnknownParentIsNotFound() {
	svc := s.newMailService(nil)

	_, err := svc.Reply(s.ctx, ReplyInput{SenderID: userBob, ParentMessageID: 999, Body: "hello?"})

	require.Error(s.T(), err)
	assert.True(s.T(), apperrors.IsNotFound(err))
	assert.Equal(s.T(), "mail not found", err.Error())
	assert.EqualValues(s.T(), 0, s.count(&models.Message{}, ""))
}

func (s *ServicesTestSuite) TestReply_RequiresBody() {
	svc := s.newMailService(nil)
	first := s.send(svc, userAlice, "Kickoff", "Welcome", userBob)

	_, err := svc.Reply(s.ctx, ReplyInput{SenderID: userBob, ParentMessageID: first.MailID, Body: "   "})

	assert.True(s.T(), apperrors.IsInvalidInput(err))
	assert.EqualValues(s.T(), 1, s.count(&models.Message{}, ""))
}

func (s *ServicesTestSuite) TestReply_RollsBackWhenAttachmentInsertFails() {
	svc := s.newMailService(nil)
	first := s.send(svc, userAlice, "Kickoff", "Welcome", userBob)
	s.failTable.Store("mail_attachments")

	_, err := svc.Reply(s.ctx, ReplyInput{
		SenderID:        userBob,
		ParentMessageID: first.MailID,
		Body:            "with file",
		Attachments:     []models.Attachment{{OriginalName: "x.pdf", FileName: "x.pdf", FilePath: "uploads/documents/x.pdf"}},
	})

	require.Error(s.T(), err)
	assert.Equal(s.T(), "reply failed", err.Error())
	assert.Equal(s.T(), apperrors.CodeDeliveryFailed, apperrors.GetErrorCode(err))
	assert.EqualValues(s.T(), 1, s.count(&models.Message{}, "thread_id = ?", first.ThreadID))
	assert.EqualValues(s.T(), 1, s.count(&models.Recipient{}, ""))
}

// ==================== MarkRead Tests ====================

func (s *ServicesTestSuite) TestMarkRead_IsIdempotent() {
	svc := s.newMailService(nil)
	first := s.send(svc, userAlice, "Kickoff", "Welcome", userBob)

	require.NoError(s.T(), svc.MarkRead(s.ctx, userBob, first.MailID))
	require.NoError(s.T(), svc.MarkRead(s.ctx, userBob, first.MailID))

	var row models.Recipient
	require.NoError(s.T(), s.db.Where("mail_id = ? AND recipient_id = ?", first.MailID, userBob).First(&row).Error)
	assert.True(s.T(), row.IsRead)
	assert.NotNil(s.T(), row.ReadAt)

	read := s.publisher.mailEvents(userBob, websocket.EventMailRead)
	require.Len(s.T(), read, 2)
	assert.Equal(s.T(), first.MailID, read[0].MailID)
}

func (s *ServicesTestSuite) TestMarkRead_MissingRowIsNoop() {
	svc := s.newMailService(nil)
	first := s.send(svc, userAlice, "Kickoff", "Welcome", userBob)

	assert.NoError(s.T(), svc.MarkRead(s.ctx, userCarol, first.MailID))
	assert.NoError(s.T(), svc.MarkRead(s.ctx, userCarol, 12345))
	assert.EqualValues(s.T(), 0, s.count(&models.Recipient{}, "is_read = ?", true))
}

// ==================== DeleteConversation Tests ====================

func (s *ServicesTestSuite) TestDeleteConversation_IsIdempotentAndPrivate() {
	svc := s.newMailService(nil)
	first := s.send(svc, userAlice, "Kickoff", "Welcome", userBob, userCarol)
	s.reply(svc, userCarol, first.MailID, "Thanks")

	require.NoError(s.T(), svc.DeleteConversation(s.ctx, userCarol, first.ThreadID))
	afterOnce := s.snapshotFlags()
	require.NoError(s.T(), svc.DeleteConversation(s.ctx, userCarol, first.ThreadID))

	assert.Equal(s.T(), afterOnce, s.snapshotFlags())

	inbox, err := svc.Inbox(s.ctx, userCarol)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), inbox)

	sent, err := svc.Sent(s.ctx, userCarol)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), sent)

	for _, id := range []uint{userAlice, userBob} {
		inbox, err := svc.Inbox(s.ctx, id)
		require.NoError(s.T(), err)
		assert.Len(s.T(), inbox, 1)
	}

	// Rows are only hidden, never removed.
	assert.EqualValues(s.T(), 2, s.count(&models.Message{}, "thread_id = ?", first.ThreadID))
	assert.EqualValues(s.T(), 1, s.count(&models.Thread{}, ""))
}

func (s *ServicesTestSuite) TestDeleteConversation_UnknownThreadIsNotFound() {
	svc := s.newMailService(nil)

	err := svc.DeleteConversation(s.ctx, userAlice, 404)

	require.Error(s.T(), err)
	assert.True(s.T(), apperrors.IsNotFound(err))
	assert.Equal(s.T(), "thread not found", err.Error())
}

func (s *ServicesTestSuite) TestDeleteConversation_PushesUpdateToActor() {
	svc := s.newMailService(nil)
	first := s.send(svc, userAlice, "Kickoff", "Welcome", userBob)
	s.publisher.records = nil

	require.NoError(s.T(), svc.DeleteConversation(s.ctx, userBob, first.ThreadID))

	assert.Equal(s.T(), []uint{userBob}, s.publisher.recipientsOf(websocket.EventMailUpdate))
	updates := s.publisher.mailEvents(userBob, websocket.EventMailUpdate)
	require.Len(s.T(), updates, 1)
	assert.Equal(s.T(), ActionDeleted, updates[0].Action)
	assert.Equal(s.T(), first.ThreadID, updates[0].ThreadID)
}

type flagSnapshot struct {
	Recipients []models.Recipient
	Mails      []models.Message
}

func (s *ServicesTestSuite) snapshotFlags() flagSnapshot {
	var snap flagSnapshot
	require.NoError(s.T(), s.db.Select("mail_id", "recipient_id", "is_read", "is_deleted").
		Order("mail_id, recipient_id").Find(&snap.Recipients).Error)
	require.NoError(s.T(), s.db.Select("id", "sender_deleted").Order("id").Find(&snap.Mails).Error)
	return snap
}

// ==================== Query Tests ====================

func (s *ServicesTestSuite) TestKickoffScenario() {
	svc := s.newMailService(nil)

	first := s.send(svc, userAlice, "Kickoff", "Welcome to the project", userBob, userCarol)

	for _, id := range []uint{userBob, userCarol} {
		inbox, err := svc.Inbox(s.ctx, id)
		require.NoError(s.T(), err)
		require.Len(s.T(), inbox, 1)
		assert.Equal(s.T(), "Kickoff", inbox[0].Subject)
		assert.Equal(s.T(), "Welcome to the project", inbox[0].Preview)
		assert.False(s.T(), inbox[0].IsRead)
		assert.False(s.T(), inbox[0].HasReplies)
	}

	sent, err := svc.Sent(s.ctx, userAlice)
	require.NoError(s.T(), err)
	require.Len(s.T(), sent, 1)
	assert.Equal(s.T(), "Bob (bob@example.com), Carol (carol@example.com)", sent[0].Recipients)

	reply := s.reply(svc, userBob, first.MailID, "Glad to be here")

	for _, id := range []uint{userAlice, userBob, userCarol} {
		detail, err := svc.ThreadDetail(s.ctx, first.MailID)
		require.NoError(s.T(), err, "user %d", id)
		require.Len(s.T(), detail.Mails, 2)
		assert.Equal(s.T(), first.MailID, detail.Mails[0].ID)
		assert.Equal(s.T(), reply.MailID, detail.Mails[1].ID)
		assert.False(s.T(), detail.Mails[1].CreatedAt.Before(detail.Mails[0].CreatedAt))
	}

	carolInbox, err := svc.Inbox(s.ctx, userCarol)
	require.NoError(s.T(), err)
	require.Len(s.T(), carolInbox, 1)
	assert.Equal(s.T(), "Glad to be here", carolInbox[0].Preview)
	assert.Equal(s.T(), reply.MailID, carolInbox[0].ID)
	assert.True(s.T(), carolInbox[0].HasReplies)
	assert.Equal(s.T(), 1, carolInbox[0].RepliesCount)

	require.NoError(s.T(), svc.DeleteConversation(s.ctx, userCarol, first.ThreadID))

	carolInbox, err = svc.Inbox(s.ctx, userCarol)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), carolInbox)

	aliceInbox, err := svc.Inbox(s.ctx, userAlice)
	require.NoError(s.T(), err)
	require.Len(s.T(), aliceInbox, 1)
	assert.Equal(s.T(), "Glad to be here", aliceInbox[0].Preview)

	bobInbox, err := svc.Inbox(s.ctx, userBob)
	require.NoError(s.T(), err)
	require.Len(s.T(), bobInbox, 1)

	sent, err = svc.Sent(s.ctx, userAlice)
	require.NoError(s.T(), err)
	assert.Len(s.T(), sent, 1)

	detail, err := svc.ThreadDetail(s.ctx, first.MailID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), detail.Mails, 2)
}

func (s *ServicesTestSuite) TestInbox_OwnLatestMailCountsAsRead() {
	svc := s.newMailService(nil)
	first := s.send(svc, userAlice, "Kickoff", "Welcome", userBob)
	s.reply(svc, userBob, first.MailID, "Thanks")

	bobInbox, err := svc.Inbox(s.ctx, userBob)
	require.NoError(s.T(), err)
	require.Len(s.T(), bobInbox, 1)
	assert.Equal(s.T(), "Bob", bobInbox[0].SenderName)
	assert.True(s.T(), bobInbox[0].IsRead)
	require.Len(s.T(), bobInbox[0].Replies, 2)
	assert.Equal(s.T(), "Welcome", bobInbox[0].Replies[0].Body)
	assert.Equal(s.T(), "Alice", bobInbox[0].Replies[0].SenderName)

	aliceInbox, err := svc.Inbox(s.ctx, userAlice)
	require.NoError(s.T(), err)
	require.Len(s.T(), aliceInbox, 1)
	assert.False(s.T(), aliceInbox[0].IsRead)
}

func (s *ServicesTestSuite) TestInbox_EmptyForNewUser() {
	svc := s.newMailService(nil)

	inbox, err := svc.Inbox(s.ctx, userDave)

	require.NoError(s.T(), err)
	assert.NotNil(s.T(), inbox)
	assert.Empty(s.T(), inbox)
}

func (s *ServicesTestSuite) TestThreadDetail_UnknownMailIsNotFound() {
	svc := s.newMailService(nil)

	_, err := svc.ThreadDetail(s.ctx, 777)

	assert.True(s.T(), apperrors.IsNotFound(err))
}

func (s *ServicesTestSuite) TestAllThreads_ShowsRecipientStateAndDeletedFlags() {
	svc := s.newMailService(nil)
	older := s.send(svc, userAlice, "Older", "first", userBob)
	newer := s.send(svc, userCarol, "Newer", "second", userAlice, userBob)
	require.NoError(s.T(), svc.MarkRead(s.ctx, userBob, older.MailID))
	require.NoError(s.T(), svc.DeleteConversation(s.ctx, userAlice, older.ThreadID))

	threads, err := svc.AllThreads(s.ctx)

	require.NoError(s.T(), err)
	require.Len(s.T(), threads, 2)
	assert.Equal(s.T(), newer.ThreadID, threads[0].ThreadID)
	assert.Equal(s.T(), models.UserRef{ID: userCarol, Name: "Carol"}, threads[0].CreatedBy)

	oldThread := threads[1]
	assert.Equal(s.T(), "Older", oldThread.Subject)
	require.Len(s.T(), oldThread.Mails, 1)
	assert.True(s.T(), oldThread.Mails[0].SenderDeleted)
	require.Len(s.T(), oldThread.Mails[0].Recipients, 1)
	assert.Equal(s.T(), userBob, oldThread.Mails[0].Recipients[0].RecipientID)
	assert.True(s.T(), oldThread.Mails[0].Recipients[0].IsRead)
	assert.False(s.T(), oldThread.Mails[0].Recipients[0].IsDeleted)

	require.Len(s.T(), threads[0].Mails, 1)
	assert.Len(s.T(), threads[0].Mails[0].Recipients, 2)
}

func (s *ServicesTestSuite) TestSuggestRecipients() {
	svc := s.newMailService(nil)

	empty, err := svc.SuggestRecipients(s.ctx, userAlice, "  ", 0)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), empty)

	hits, err := svc.SuggestRecipients(s.ctx, userAlice, "d", 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), hits, 1)
	assert.Equal(s.T(), "Dave", hits[0].Name)
	assert.Equal(s.T(), "MEMBER", hits[0].Role)

	self, err := svc.SuggestRecipients(s.ctx, userDave, "d", 0)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), self)

	everyone, err := svc.SuggestRecipients(s.ctx, userRoot, "example", 0)
	require.NoError(s.T(), err)
	names := make([]string, 0, len(everyone))
	for _, h := range everyone {
		names = append(names, h.Name)
	}
	assert.Equal(s.T(), []string{"Alice", "Bob", "Carol", "Dave"}, names)

	limited, err := svc.SuggestRecipients(s.ctx, userRoot, "example", 1)
	require.NoError(s.T(), err)
	assert.Len(s.T(), limited, 1)
}
