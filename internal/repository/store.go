package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one database handle.
// A Store obtained inside Transaction is bound to that transaction.
type Store struct {
	db *gorm.DB

	Threads       ThreadRepository
	Messages      MessageRepository
	Recipients    RecipientRepository
	Attachments   AttachmentRepository
	Notifications NotificationRepository
	Directory     DirectoryRepository
}

// NewStore creates a Store over db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Threads:       NewThreadRepository(db),
		Messages:      NewMessageRepository(db),
		Recipients:    NewRecipientRepository(db),
		Attachments:   NewAttachmentRepository(db),
		Notifications: NewNotificationRepository(db),
		Directory:     NewDirectoryRepository(db),
	}
}

// DB returns the underlying handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn inside a single database transaction.
// The transaction commits when fn returns nil and rolls back when fn returns
// an error or panics; the connection is released on every path.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
