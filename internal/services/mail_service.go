package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/welldanyogia/projecthub-backend/internal/errors"
	"github.com/welldanyogia/projecthub-backend/internal/metrics"
	"github.com/welldanyogia/projecthub-backend/internal/models"
	"github.com/welldanyogia/projecthub-backend/internal/repository"
	"github.com/welldanyogia/projecthub-backend/internal/websocket"
)

// Suggestion limits
const (
	DefaultSuggestionLimit = 10
	MaxSuggestionLimit     = 50
)

// Opaque messages returned when a transaction rolls back
const (
	msgSendFailed   = "mail sending failed"
	msgReplyFailed  = "reply failed"
	msgDeleteFailed = "delete failed"
)

// SendInput is a new top-level mail
type SendInput struct {
	SenderID     uint
	Subject      string
	Body         string
	RecipientIDs []uint
	Attachments  []models.Attachment
}

// ReplyInput is a reply to an existing mail's thread
type ReplyInput struct {
	SenderID        uint
	ParentMessageID uint
	Body            string
	Attachments     []models.Attachment
}

// DeliveryResult identifies the committed mail and its audience
type DeliveryResult struct {
	MailID       uint   `json:"mail_id"`
	ThreadID     uint   `json:"thread_id"`
	RecipientIDs []uint `json:"recipient_ids"`
}

// MailService is the thread messaging engine
type MailService interface {
	// Send creates a thread with its first mail for the explicit recipients
	Send(ctx context.Context, input SendInput) (*DeliveryResult, error)

	// Reply appends a mail to the parent's thread for every past participant
	Reply(ctx context.Context, input ReplyInput) (*DeliveryResult, error)

	// MarkRead flags the user's copy of a mail as read. A missing copy is a no-op.
	MarkRead(ctx context.Context, userID, messageID uint) error

	// DeleteConversation hides a thread from the user's own views only
	DeleteConversation(ctx context.Context, userID, threadID uint) error

	// Inbox lists the threads the user received, keyed on their latest mail
	Inbox(ctx context.Context, userID uint) ([]models.InboxItem, error)

	// Sent lists the mails the user sent and has not hidden
	Sent(ctx context.Context, userID uint) ([]models.SentItem, error)

	// ThreadDetail returns the full chain of the mail's thread, ignoring delete flags
	ThreadDetail(ctx context.Context, messageID uint) (*models.ThreadDetail, error)

	// AllThreads returns every thread with recipient state for administrators
	AllThreads(ctx context.Context) ([]models.AdminThread, error)

	// SuggestRecipients searches users the caller may write to
	SuggestRecipients(ctx context.Context, userID uint, query string, limit int) ([]models.UserSuggestion, error)
}

// MailServiceConfig holds the optional collaborators of the mail service
type MailServiceConfig struct {
	Publisher Publisher
	// Notifier, when set, also records a MAIL_RECEIVED notification per
	// recipient. These notifications are never relayed by e-mail.
	Notifier Notifier
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	// Now overrides the clock used for read timestamps
	Now func() time.Time
}

// mailService implements MailService
type mailService struct {
	store     *repository.Store
	resolver  RecipientResolver
	publisher Publisher
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewMailService creates a new MailService instance
func NewMailService(store *repository.Store, resolver RecipientResolver, config MailServiceConfig) MailService {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &mailService{
		store:     store,
		resolver:  resolver,
		publisher: config.Publisher,
		notifier:  config.Notifier,
		metrics:   config.Metrics,
		logger:    logger,
		now:       now,
	}
}

// Send writes thread, mail, attachments and recipient rows in one transaction,
// then pushes received, sent and update events
func (s *mailService) Send(ctx context.Context, input SendInput) (*DeliveryResult, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" || strings.TrimSpace(input.Body) == "" || len(input.RecipientIDs) == 0 {
		return nil, apperrors.Validation("subject, body & recipients required")
	}

	audience, err := s.resolver.ResolveSendAudience(input.SenderID, input.RecipientIDs)
	if err != nil {
		return nil, err
	}

	thread := &models.Thread{Subject: subject, CreatedBy: input.SenderID}
	mail := &models.Message{SenderID: input.SenderID, Subject: subject, Body: input.Body}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Threads.Create(ctx, thread); err != nil {
			return err
		}
		mail.ThreadID = thread.ID
		if err := tx.Messages.Create(ctx, mail); err != nil {
			return err
		}
		if err := tx.Attachments.CreateBatch(ctx, mail.ID, input.Attachments); err != nil {
			return err
		}
		return tx.Recipients.CreateBatch(ctx, recipientRows(mail.ID, audience))
	})
	s.metrics.MailOperation("send", err)
	if err != nil {
		s.logger.Error("mail sending failed",
			slog.Uint64("sender_id", uint64(input.SenderID)),
			slog.Any("error", err))
		return nil, apperrors.DeliveryFailed(msgSendFailed)
	}

	s.logger.Info("mail sent",
		slog.Uint64("mail_id", uint64(mail.ID)),
		slog.Uint64("thread_id", uint64(thread.ID)),
		slog.Int("recipients", len(audience)))

	s.announceSend(ctx, mail, audience)

	return &DeliveryResult{MailID: mail.ID, ThreadID: thread.ID, RecipientIDs: audience}, nil
}

// announceSend runs after commit
func (s *mailService) announceSend(ctx context.Context, mail *models.Message, audience []uint) {
	sender := s.lookupUser(ctx, mail.SenderID)

	received := MailEvent{
		MailID:      mail.ID,
		ThreadID:    mail.ThreadID,
		SenderID:    mail.SenderID,
		SenderName:  sender.Name,
		SenderEmail: sender.Email,
		Subject:     mail.Subject,
		Preview:     mail.Preview(models.PreviewLength),
		Recipients:  audience,
		CreatedAt:   &mail.CreatedAt,
	}
	sent := MailEvent{MailID: mail.ID, ThreadID: mail.ThreadID, Recipients: audience, CreatedAt: &mail.CreatedAt}

	s.publish(func(p Publisher) {
		p.PushToUsers(audience, websocket.EventMailReceived, received)
		p.PushToUser(mail.SenderID, websocket.EventMailSent, sent)
		p.PushToUsers(audience, websocket.EventMailUpdate, MailEvent{MailID: mail.ID, ThreadID: mail.ThreadID, Action: ActionReceived})
		p.PushToUser(mail.SenderID, websocket.EventMailUpdate, MailEvent{MailID: mail.ID, ThreadID: mail.ThreadID, Action: ActionSent})
	})

	s.notifyRecipients(ctx, mail, sender, audience)
}

// Reply writes the reply, its attachments and recipient rows for the
// current thread audience in one transaction
func (s *mailService) Reply(ctx context.Context, input ReplyInput) (*DeliveryResult, error) {
	if strings.TrimSpace(input.Body) == "" {
		return nil, apperrors.Validation("body is required")
	}

	var (
		mail     *models.Message
		audience []uint
	)

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		parent, err := tx.Messages.GetWithThread(ctx, input.ParentMessageID)
		if err != nil {
			return err
		}

		mail = &models.Message{
			ThreadID: parent.ThreadID,
			SenderID: input.SenderID,
			Subject:  parent.Thread.Subject,
			Body:     input.Body,
		}
		if err := tx.Messages.Create(ctx, mail); err != nil {
			return err
		}
		if err := tx.Attachments.CreateBatch(ctx, mail.ID, input.Attachments); err != nil {
			return err
		}

		audience, err = s.resolver.ResolveReplyAudience(ctx, tx, parent.ThreadID, input.SenderID)
		if err != nil {
			return err
		}
		return tx.Recipients.CreateBatch(ctx, recipientRows(mail.ID, audience))
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewAppError(apperrors.ErrMessageNotFound, "mail not found", apperrors.CodeNotFound)
	}
	s.metrics.MailOperation("reply", err)
	if err != nil {
		s.logger.Error("reply failed",
			slog.Uint64("sender_id", uint64(input.SenderID)),
			slog.Uint64("parent_id", uint64(input.ParentMessageID)),
			slog.Any("error", err))
		return nil, apperrors.DeliveryFailed(msgReplyFailed)
	}

	s.logger.Info("reply sent",
		slog.Uint64("mail_id", uint64(mail.ID)),
		slog.Uint64("thread_id", uint64(mail.ThreadID)),
		slog.Int("recipients", len(audience)))

	s.announceReply(ctx, mail, audience)

	return &DeliveryResult{MailID: mail.ID, ThreadID: mail.ThreadID, RecipientIDs: audience}, nil
}

// announceReply runs after commit
func (s *mailService) announceReply(ctx context.Context, mail *models.Message, audience []uint) {
	sender := s.lookupUser(ctx, mail.SenderID)

	replied := MailEvent{
		MailID:     mail.ID,
		ThreadID:   mail.ThreadID,
		SenderID:   mail.SenderID,
		SenderName: sender.Name,
		Subject:    mail.Subject,
		Preview:    mail.Preview(models.PreviewLength),
		Recipients: audience,
		CreatedAt:  &mail.CreatedAt,
	}
	update := MailEvent{MailID: mail.ID, ThreadID: mail.ThreadID, Action: ActionReplied}

	s.publish(func(p Publisher) {
		p.PushToUsers(audience, websocket.EventMailReplied, replied)
		p.PushToUser(mail.SenderID, websocket.EventMailReplied, MailEvent{MailID: mail.ID, ThreadID: mail.ThreadID, Self: true, CreatedAt: &mail.CreatedAt})
		p.PushToUser(mail.SenderID, websocket.EventMailUpdate, update)
		p.PushToUsers(audience, websocket.EventMailUpdate, update)
	})

	s.notifyRecipients(ctx, mail, sender, audience)
}

// MarkRead flags one recipient row and tells the user's other sessions
func (s *mailService) MarkRead(ctx context.Context, userID, messageID uint) error {
	var row models.Recipient
	row.MarkRead(s.now())

	affected, err := s.store.Recipients.MarkRead(ctx, messageID, userID, *row.ReadAt)
	s.metrics.MailOperation("mark_read", err)
	if err != nil {
		s.logger.Error("failed to mark mail read",
			slog.Uint64("mail_id", uint64(messageID)),
			slog.Uint64("user_id", uint64(userID)),
			slog.Any("error", err))
		return apperrors.NewAppError(apperrors.ErrInternal, "failed to mark mail as read", apperrors.CodeInternalError)
	}
	if affected == 0 {
		s.logger.Debug("mark read matched no recipient row",
			slog.Uint64("mail_id", uint64(messageID)),
			slog.Uint64("user_id", uint64(userID)))
	}

	s.publish(func(p Publisher) {
		p.PushToUser(userID, websocket.EventMailRead, MailEvent{MailID: messageID})
	})
	return nil
}

// DeleteConversation flips the user's recipient and sender delete flags for
// every mail of the thread in one transaction
func (s *mailService) DeleteConversation(ctx context.Context, userID, threadID uint) error {
	errThreadMissing := errors.New("thread missing")

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		exists, err := tx.Threads.Exists(ctx, threadID)
		if err != nil {
			return err
		}
		if !exists {
			return errThreadMissing
		}
		if _, err := tx.Recipients.MarkDeletedInThread(ctx, threadID, userID); err != nil {
			return err
		}
		_, err = tx.Messages.MarkSenderDeletedInThread(ctx, threadID, userID)
		return err
	})
	if errors.Is(err, errThreadMissing) {
		return apperrors.NewAppError(apperrors.ErrThreadNotFound, "thread not found", apperrors.CodeNotFound)
	}
	s.metrics.MailOperation("delete", err)
	if err != nil {
		s.logger.Error("delete conversation failed",
			slog.Uint64("thread_id", uint64(threadID)),
			slog.Uint64("user_id", uint64(userID)),
			slog.Any("error", err))
		return apperrors.DeliveryFailed(msgDeleteFailed)
	}

	s.publish(func(p Publisher) {
		p.PushToUser(userID, websocket.EventMailUpdate, MailEvent{ThreadID: threadID, Action: ActionDeleted})
	})
	return nil
}

// publish hands the pushes to the publisher, swallowing delivery panics
func (s *mailService) publish(fn func(p Publisher)) {
	if s.publisher == nil {
		return
	}
	push(s.logger, "mail", func() { fn(s.publisher) })
}

// notifyRecipients records a MAIL_RECEIVED notification. The mail is already
// committed, so failures are logged only.
func (s *mailService) notifyRecipients(ctx context.Context, mail *models.Message, sender models.User, audience []uint) {
	if s.notifier == nil || len(audience) == 0 {
		return
	}

	from := sender.Name
	if from == "" {
		from = fmt.Sprintf("user %d", mail.SenderID)
	}
	_, err := s.notifier.Notify(ctx, NotifyInput{
		UserIDs:    audience,
		Title:      "New mail from " + from,
		Message:    mail.Subject,
		Type:       models.NotificationTypeMailReceived,
		EntityType: "Mail",
		EntityID:   mail.ID,
		SkipRelay:  true,
	})
	if err != nil {
		s.logger.Warn("failed to record mail notification",
			slog.Uint64("mail_id", uint64(mail.ID)),
			slog.Any("error", err))
	}
}

// lookupUser loads one user for event payloads; an unknown user yields a zero value
func (s *mailService) lookupUser(ctx context.Context, id uint) models.User {
	users, err := s.store.Directory.UsersByIDs(ctx, []uint{id})
	if err != nil {
		s.logger.Warn("failed to load user", slog.Uint64("user_id", uint64(id)), slog.Any("error", err))
		return models.User{ID: id}
	}
	if u, ok := users[id]; ok {
		return u
	}
	return models.User{ID: id}
}

// recipientRows builds the unread, visible recipient rows of a mail
func recipientRows(messageID uint, audience []uint) []models.Recipient {
	rows := make([]models.Recipient, 0, len(audience))
	for _, id := range audience {
		rows = append(rows, models.Recipient{MessageID: messageID, RecipientID: id})
	}
	return rows
}
