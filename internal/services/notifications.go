package services

import (
	"github.com/mglush/krug/backend/internal/models"
	"github.com/mglush/krug/backend/internal/repositories"
	"gorm.io/gorm"
)

// notify appends a notification inside the caller's transaction.
// Self-notifications are never persisted. Other services call this
// after a state change that crosses identities; a failed insert fails
// the surrounding transaction, so an acknowledged like/comment/follow
// always has its notification.
func notify(tx *gorm.DB, recipientID, senderID uint, kind models.NotificationKind) error {
	if recipientID == senderID {
		return nil
	}
	return repositories.NewPostgresNotificationRepository(tx).CreateNotification(&models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Kind:        kind,
	})
}

// NotificationService exposes the recipient-facing side of the inbox.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// ListInbox returns the recipient's notifications newest first. Reading
// the inbox is not a pure read: every unread notification is marked
// read in the same transaction, while the returned payload still
// carries the pre-read is_read values.
func (s *NotificationService) ListInbox(recipientID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewPostgresNotificationRepository(tx)
		var err error
		notifications, err = repo.GetByRecipientID(recipientID)
		if err != nil {
			return err
		}
		return repo.MarkAllAsRead(recipientID)
	})
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// UnreadCount returns how many unread notifications the recipient has.
func (s *NotificationService) UnreadCount(recipientID uint) (int64, error) {
	return repositories.NewPostgresNotificationRepository(s.db).GetUnreadCount(recipientID)
}
