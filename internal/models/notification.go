package models

import "time"

// NotificationKind is the closed set of events that produce a
// notification. Storage holds the kind only; user-facing text is
// rendered from it at response time.
type NotificationKind string

const (
	NotificationLikedPost        NotificationKind = "liked_your_post"
	NotificationCommentedOnPost  NotificationKind = "commented_on_your_post"
	NotificationStartedFollowing NotificationKind = "started_following_you"
)

// Message renders the default English text for a notification kind.
func (k NotificationKind) Message() string {
	switch k {
	case NotificationLikedPost:
		return "liked your post"
	case NotificationCommentedOnPost:
		return "commented on your post"
	case NotificationStartedFollowing:
		return "started following you"
	default:
		return string(k)
	}
}

// Notification represents a user notification. Sender never mutates it;
// the recipient flips IsRead by listing the inbox.
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RecipientID uint             `json:"recipient_id" gorm:"index"`
	SenderID    uint             `json:"sender_id" gorm:"index"`
	Kind        NotificationKind `json:"kind" gorm:"size:40;index"`
	IsRead      bool             `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index"`
}
