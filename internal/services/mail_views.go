package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/welldanyogia/projecthub-backend/internal/errors"
	"github.com/welldanyogia/projecthub-backend/internal/models"
	"github.com/welldanyogia/projecthub-backend/internal/repository"
)

// excludedSuggestionRoles are never offered as mail recipients
var excludedSuggestionRoles = []string{models.RoleSuperAdmin, models.RoleAdmin}

// Inbox returns one item per thread in which the user holds a visible
// recipient row. Each item shows the thread's latest mail.
func (s *mailService) Inbox(ctx context.Context, userID uint) ([]models.InboxItem, error) {
	threadIDs, err := s.store.Recipients.InboxThreadIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load inbox")
	}
	if len(threadIDs) == 0 {
		return []models.InboxItem{}, nil
	}

	latest, err := s.store.Messages.LatestByThreads(ctx, threadIDs)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load inbox")
	}
	chains, err := s.store.Messages.ListByThreads(ctx, threadIDs)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load inbox")
	}

	latestIDs := make([]uint, 0, len(latest))
	for _, m := range latest {
		latestIDs = append(latestIDs, m.ID)
	}
	rows, err := s.store.Recipients.ListByMessages(ctx, latestIDs)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load inbox")
	}
	readState := make(map[uint]bool, len(rows))
	for _, r := range rows {
		if r.RecipientID == userID {
			readState[r.MessageID] = r.IsRead
		}
	}

	byThread := make(map[uint][]models.Message, len(threadIDs))
	for _, m := range chains {
		byThread[m.ThreadID] = append(byThread[m.ThreadID], m)
	}

	users, err := s.store.Directory.UsersByIDs(ctx, senderIDs(chains))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load inbox")
	}

	items := make([]models.InboxItem, 0, len(latest))
	for _, m := range latest {
		chain := byThread[m.ThreadID]
		// A mail the user authored has no recipient row for them.
		isRead, ok := readState[m.ID]
		if !ok {
			isRead = true
		}

		replies := make([]models.MailReply, 0, len(chain))
		for _, c := range chain {
			replies = append(replies, models.MailReply{
				ID:         c.ID,
				Body:       c.Body,
				CreatedAt:  c.CreatedAt,
				SenderID:   c.SenderID,
				SenderName: users[c.SenderID].Name,
			})
		}

		sender := users[m.SenderID]
		items = append(items, models.InboxItem{
			ID:               m.ID,
			ThreadID:         m.ThreadID,
			Subject:          m.Subject,
			Preview:          m.Preview(models.PreviewLength),
			CreatedAt:        m.CreatedAt,
			SenderID:         m.SenderID,
			SenderName:       sender.Name,
			SenderEmail:      sender.Email,
			IsRead:           isRead,
			AttachmentsCount: len(m.Attachments),
			Attachments:      attachmentsOrEmpty(m.Attachments),
			HasReplies:       len(chain) > 1,
			RepliesCount:     max(len(chain)-1, 0),
			Replies:          replies,
		})
	}
	return items, nil
}

// Sent returns the user's sent mails, newest first, with rendered recipients
func (s *mailService) Sent(ctx context.Context, userID uint) ([]models.SentItem, error) {
	mails, err := s.store.Messages.ListSent(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load sent mails")
	}
	if len(mails) == 0 {
		return []models.SentItem{}, nil
	}

	ids := make([]uint, 0, len(mails))
	for _, m := range mails {
		ids = append(ids, m.ID)
	}
	rows, err := s.store.Recipients.ListByMessages(ctx, ids)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load sent mails")
	}

	byMail := make(map[uint][]uint, len(mails))
	userIDs := make([]uint, 0, len(rows))
	for _, r := range rows {
		byMail[r.MessageID] = append(byMail[r.MessageID], r.RecipientID)
		userIDs = append(userIDs, r.RecipientID)
	}
	users, err := s.store.Directory.UsersByIDs(ctx, uniqueIDs(userIDs))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load sent mails")
	}

	items := make([]models.SentItem, 0, len(mails))
	for _, m := range mails {
		items = append(items, models.SentItem{
			ID:               m.ID,
			ThreadID:         m.ThreadID,
			Subject:          m.Subject,
			Preview:          m.Preview(models.PreviewLength),
			CreatedAt:        m.CreatedAt,
			Recipients:       renderRecipients(byMail[m.ID], users),
			AttachmentsCount: len(m.Attachments),
			Attachments:      attachmentsOrEmpty(m.Attachments),
		})
	}
	return items, nil
}

// ThreadDetail returns every mail of the mail's thread in ascending order
func (s *mailService) ThreadDetail(ctx context.Context, messageID uint) (*models.ThreadDetail, error) {
	mail, err := s.store.Messages.GetWithThread(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewAppError(apperrors.ErrMessageNotFound, "mail not found", apperrors.CodeNotFound)
		}
		return nil, apperrors.Wrap(err, "failed to load thread")
	}

	chain, err := s.store.Messages.ListByThread(ctx, mail.ThreadID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load thread")
	}
	users, err := s.store.Directory.UsersByIDs(ctx, senderIDs(chain))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load thread")
	}

	detail := &models.ThreadDetail{
		ThreadID: mail.ThreadID,
		Subject:  mail.Thread.Subject,
		Mails:    make([]models.ThreadMail, 0, len(chain)),
	}
	for _, m := range chain {
		detail.Mails = append(detail.Mails, threadMail(m, users))
	}
	return detail, nil
}

// AllThreads returns every thread, newest first, with per-recipient state
func (s *mailService) AllThreads(ctx context.Context) ([]models.AdminThread, error) {
	threads, err := s.store.Threads.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load threads")
	}
	if len(threads) == 0 {
		return []models.AdminThread{}, nil
	}

	threadIDs := make([]uint, 0, len(threads))
	userIDs := make([]uint, 0, len(threads))
	for _, t := range threads {
		threadIDs = append(threadIDs, t.ID)
		userIDs = append(userIDs, t.CreatedBy)
	}

	mails, err := s.store.Messages.ListByThreads(ctx, threadIDs)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load threads")
	}
	mailIDs := make([]uint, 0, len(mails))
	for _, m := range mails {
		mailIDs = append(mailIDs, m.ID)
		userIDs = append(userIDs, m.SenderID)
	}
	rows, err := s.store.Recipients.ListByMessages(ctx, mailIDs)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load threads")
	}
	for _, r := range rows {
		userIDs = append(userIDs, r.RecipientID)
	}
	users, err := s.store.Directory.UsersByIDs(ctx, uniqueIDs(userIDs))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load threads")
	}

	recipientsByMail := make(map[uint][]models.AdminRecipient, len(mails))
	for _, r := range rows {
		u := users[r.RecipientID]
		recipientsByMail[r.MessageID] = append(recipientsByMail[r.MessageID], models.AdminRecipient{
			RecipientID:    r.RecipientID,
			RecipientName:  u.Name,
			RecipientEmail: u.Email,
			IsRead:         r.IsRead,
			IsDeleted:      r.IsDeleted,
		})
	}
	mailsByThread := make(map[uint][]models.AdminMail, len(threads))
	for _, m := range mails {
		recipients := recipientsByMail[m.ID]
		if recipients == nil {
			recipients = []models.AdminRecipient{}
		}
		mailsByThread[m.ThreadID] = append(mailsByThread[m.ThreadID], models.AdminMail{
			ThreadMail:    threadMail(m, users),
			SenderDeleted: m.SenderDeleted,
			Recipients:    recipients,
		})
	}

	out := make([]models.AdminThread, 0, len(threads))
	for _, t := range threads {
		threadMails := mailsByThread[t.ID]
		if threadMails == nil {
			threadMails = []models.AdminMail{}
		}
		out = append(out, models.AdminThread{
			ThreadID:  t.ID,
			Subject:   t.Subject,
			CreatedAt: t.CreatedAt,
			CreatedBy: models.UserRef{ID: t.CreatedBy, Name: users[t.CreatedBy].Name},
			Mails:     threadMails,
		})
	}
	return out, nil
}

// SuggestRecipients searches users by name or email. An empty query yields
// no suggestions; administrators and the caller are never suggested.
func (s *mailService) SuggestRecipients(ctx context.Context, userID uint, query string, limit int) ([]models.UserSuggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.UserSuggestion{}, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	if limit > MaxSuggestionLimit {
		limit = MaxSuggestionLimit
	}

	suggestions, err := s.store.Directory.SearchUsers(ctx, query, userID, excludedSuggestionRoles, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to search users")
	}
	if suggestions == nil {
		suggestions = []models.UserSuggestion{}
	}
	return suggestions, nil
}

func threadMail(m models.Message, users map[uint]models.User) models.ThreadMail {
	sender := users[m.SenderID]
	return models.ThreadMail{
		ID:          m.ID,
		Subject:     m.Subject,
		Body:        m.Body,
		CreatedAt:   m.CreatedAt,
		SenderID:    m.SenderID,
		SenderName:  sender.Name,
		SenderEmail: sender.Email,
		Attachments: attachmentsOrEmpty(m.Attachments),
	}
}

// renderRecipients formats recipients as "Name (email), ..." ordered by id
func renderRecipients(ids []uint, users map[uint]models.User) string {
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, 0, len(sorted))
	for _, id := range sorted {
		u, ok := users[id]
		if !ok {
			parts = append(parts, fmt.Sprintf("user %d", id))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", u.Name, u.Email))
	}
	return strings.Join(parts, ", ")
}

func senderIDs(mails []models.Message) []uint {
	ids := make([]uint, 0, len(mails))
	for _, m := range mails {
		ids = append(ids, m.SenderID)
	}
	return uniqueIDs(ids)
}

func attachmentsOrEmpty(attachments []models.Attachment) []models.Attachment {
	if attachments == nil {
		return []models.Attachment{}
	}
	return attachments
}
