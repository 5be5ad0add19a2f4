package models

import "time"

// Like represents a like on a post. The (user_id, post_id) pair is
// unique at the storage layer so concurrent duplicate requests can
// never produce two rows.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_likes_user_post"`
	PostID    uint      `json:"post_id" gorm:"index;uniqueIndex:idx_likes_user_post"`
	CreatedAt time.Time `json:"created_at"`
}
