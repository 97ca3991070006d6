package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	apperrors "github.com/welldanyogia/projecthub-backend/internal/errors"
	"github.com/welldanyogia/projecthub-backend/internal/metrics"
	"github.com/welldanyogia/projecthub-backend/internal/models"
	"github.com/welldanyogia/projecthub-backend/internal/repository"
	"github.com/welldanyogia/projecthub-backend/internal/websocket"
)

// relayTimeout bounds one background e-mail relay
const relayTimeout = 30 * time.Second

// Notification kinds used as metric labels
const (
	kindBroadcast = "broadcast"
	kindTargeted  = "targeted"
)

// NotifyInput describes one domain event to announce.
// Nil or empty UserIDs means a broadcast to every user.
type NotifyInput struct {
	UserIDs    []uint
	Title      string
	Message    string
	Type       string
	EntityType string
	EntityID   uint

	// SkipRelay keeps the notification off the e-mail relay
	SkipRelay bool

	// SkipNotified drops targets that already hold a notification of the
	// same type about the same entity. Ignored for broadcasts.
	SkipNotified bool
}

// MailRelay forwards targeted notifications by e-mail
type MailRelay interface {
	Relay(ctx context.Context, to []string, subject, body string) error
}

// Presence reports whether a user has a live session
type Presence interface {
	IsOnline(userID uint) bool
}

// Notifier is the single chokepoint for announcing events
type Notifier interface {
	// Notify persists the notification rows, then pushes them. Only a
	// persistence failure is returned.
	Notify(ctx context.Context, input NotifyInput) ([]models.Notification, error)

	// List returns the user's own and broadcast notifications, or every
	// notification when includeAll is set
	List(ctx context.Context, userID uint, includeAll bool) ([]models.Notification, error)

	// MarkRead flags a notification visible to the user as read
	MarkRead(ctx context.Context, id, userID uint) error

	// UnreadCount counts unread notifications visible to the user
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

// NotifierConfig holds the optional collaborators of the notifier
type NotifierConfig struct {
	Publisher Publisher
	Relay     MailRelay
	// Presence, when set, keeps users with a live session off the relay
	Presence Presence
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// notifier implements Notifier
type notifier struct {
	store     *repository.Store
	publisher Publisher
	relay     MailRelay
	presence  Presence
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewNotifier creates a new Notifier instance
func NewNotifier(store *repository.Store, config NotifierConfig) Notifier {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &notifier{
		store:     store,
		publisher: config.Publisher,
		relay:     config.Relay,
		presence:  config.Presence,
		metrics:   config.Metrics,
		logger:    logger,
	}
}

// Notify persists one broadcast row or one row per unique target, then pushes
func (n *notifier) Notify(ctx context.Context, input NotifyInput) ([]models.Notification, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, apperrors.Validation("title is required")
	}

	targets := uniqueIDs(input.UserIDs)
	if input.SkipNotified && len(targets) > 0 {
		fresh, err := n.withoutNotified(ctx, targets, input)
		if err != nil {
			return nil, err
		}
		if len(fresh) == 0 {
			return nil, nil
		}
		targets = fresh
	}
	rows := buildNotifications(targets, input)

	if err := n.store.Notifications.CreateBatch(ctx, rows); err != nil {
		n.logger.Error("failed to persist notifications",
			slog.String("type", input.Type),
			slog.Int("targets", len(targets)),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to persist notifications: %w", err)
	}

	if len(targets) == 0 {
		n.metrics.NotificationsCreated(kindBroadcast, 1)
		n.pushBroadcast(rows[0])
		return rows, nil
	}

	n.metrics.NotificationsCreated(kindTargeted, len(rows))
	n.pushTargeted(rows)

	if n.relay != nil && !input.SkipRelay {
		if offline := n.offline(targets); len(offline) > 0 {
			go n.relayByMail(offline, input.Title, input.Message)
		}
	}

	return rows, nil
}

func (n *notifier) withoutNotified(ctx context.Context, targets []uint, input NotifyInput) ([]uint, error) {
	notified, err := n.store.Notifications.NotifiedUserIDs(ctx, input.Type, input.EntityType, input.EntityID, targets)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing notifications: %w", err)
	}
	fresh := make([]uint, 0, len(targets))
	for _, id := range targets {
		if !slices.Contains(notified, id) {
			fresh = append(fresh, id)
		}
	}
	return fresh, nil
}

// buildNotifications creates the unsaved rows of one fan-out
func buildNotifications(targets []uint, input NotifyInput) []models.Notification {
	template := models.Notification{
		Title:      input.Title,
		Message:    input.Message,
		Type:       input.Type,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
	}

	if len(targets) == 0 {
		return []models.Notification{template}
	}

	rows := make([]models.Notification, 0, len(targets))
	for _, id := range targets {
		row := template
		userID := id
		row.UserID = &userID
		rows = append(rows, row)
	}
	return rows
}

func (n *notifier) pushBroadcast(row models.Notification) {
	if n.publisher == nil {
		return
	}
	push(n.logger, websocket.EventNotificationNew, func() {
		n.publisher.PushToAll(websocket.EventNotificationNew, row)
	})
}

// pushTargeted pushes each row to its own user; one failing push does not
// stop the others
func (n *notifier) pushTargeted(rows []models.Notification) {
	if n.publisher == nil {
		return
	}
	for _, row := range rows {
		row := row
		push(n.logger, websocket.EventNotificationNew, func() {
			n.publisher.PushToUser(*row.UserID, websocket.EventNotificationNew, row)
		})
	}
}

// offline drops users that already received the push on a live session
func (n *notifier) offline(targets []uint) []uint {
	if n.presence == nil {
		return targets
	}
	out := make([]uint, 0, len(targets))
	for _, id := range targets {
		if !n.presence.IsOnline(id) {
			out = append(out, id)
		}
	}
	return out
}

// relayByMail forwards a targeted notification by e-mail. Failures are logged only.
func (n *notifier) relayByMail(targets []uint, subject, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
	defer cancel()

	users, err := n.store.Directory.UsersByIDs(ctx, targets)
	if err != nil {
		n.logger.Warn("failed to load notification recipients for relay", slog.Any("error", err))
		return
	}

	addrs := make([]string, 0, len(users))
	for _, id := range targets {
		if u, ok := users[id]; ok && u.Email != "" {
			addrs = append(addrs, u.Email)
		}
	}
	if len(addrs) == 0 {
		return
	}

	if err := n.relay.Relay(ctx, addrs, subject, body); err != nil {
		n.logger.Warn("notification e-mail relay failed",
			slog.Int("recipients", len(addrs)),
			slog.Any("error", err))
	}
}

// List returns notifications visible to the user, newest first
func (n *notifier) List(ctx context.Context, userID uint, includeAll bool) ([]models.Notification, error) {
	rows, err := n.store.Notifications.ListForUser(ctx, userID, includeAll, repository.DefaultNotificationLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return rows, nil
}

// MarkRead flags one notification as read
func (n *notifier) MarkRead(ctx context.Context, id, userID uint) error {
	err := n.store.Notifications.MarkRead(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewAppError(apperrors.ErrNotificationNotFound, "notification not found", apperrors.CodeNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// UnreadCount counts unread notifications visible to the user
func (n *notifier) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := n.store.Notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
