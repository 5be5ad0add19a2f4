package services

import (
	"errors"

	"github.com/mglush/krug/backend/internal/models"
	"github.com/mglush/krug/backend/internal/repositories"
	"gorm.io/gorm"
)

// EngagementService records likes and comments on posts and keeps the
// derived likes_count consistent. The counter is always recomputed from
// the like rows inside the writing transaction; concurrent likes and
// unlikes therefore converge on the true count instead of drifting the
// way a +1/-1 scheme would.
type EngagementService struct {
	db *gorm.DB
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(db *gorm.DB) *EngagementService {
	return &EngagementService{db: db}
}

// LikePost records a like by actor on the post. Liking an already-liked
// post is a no-op that returns the post unchanged with created=false.
// On first creation the post's likes_count is recomputed and the author
// notified, all in one transaction. The post row is fetched FOR UPDATE
// so two transactions can never count before seeing each other's like.
func (s *EngagementService) LikePost(actorID, postID uint) (post *models.Post, created bool, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		posts := repositories.NewPostgresPostRepository(tx)
		p, err := posts.GetPostByIDForUpdate(postID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		likes := repositories.NewPostgresLikeRepository(tx)
		insertErr := likes.CreateLike(&models.Like{UserID: actorID, PostID: postID})
		if insertErr != nil {
			if !errors.Is(insertErr, gorm.ErrDuplicatedKey) {
				return insertErr
			}
			post = p
			return nil
		}
		created = true

		count, err := likes.GetLikesCountByPostID(postID)
		if err != nil {
			return err
		}
		if err := posts.SetLikesCount(postID, count); err != nil {
			return err
		}
		p.LikesCount = count
		post = p
		return notify(tx, p.UserID, actorID, models.NotificationLikedPost)
	})
	if err != nil {
		return nil, false, err
	}
	return post, created, nil
}

// UnlikePost removes the actor's like from the post and recomputes
// likes_count. Returns ErrLikeNotFound when the actor never liked the
// post; the counter is left untouched in that case.
func (s *EngagementService) UnlikePost(actorID, postID uint) (post *models.Post, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		posts := repositories.NewPostgresPostRepository(tx)
		p, err := posts.GetPostByIDForUpdate(postID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		likes := repositories.NewPostgresLikeRepository(tx)
		if err := likes.DeleteLike(postID, actorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLikeNotFound
			}
			return err
		}

		count, err := likes.GetLikesCountByPostID(postID)
		if err != nil {
			return err
		}
		if err := posts.SetLikesCount(postID, count); err != nil {
			return err
		}
		p.LikesCount = count
		post = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment appends a comment to the post and notifies the post's
// author (suppressed when the author comments on their own post).
// Comment and notification are one atomic unit: if the notification
// insert fails, the comment is rolled back.
func (s *EngagementService) CreateComment(actorID, postID uint, content string) (comment *models.Comment, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		posts := repositories.NewPostgresPostRepository(tx)
		p, err := posts.GetPostByID(postID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		c := &models.Comment{
			PostID:  postID,
			UserID:  actorID,
			Content: content,
		}
		if err := repositories.NewPostgresCommentRepository(tx).CreateComment(c); err != nil {
			return err
		}
		comment = c
		return notify(tx, p.UserID, actorID, models.NotificationCommentedOnPost)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// HasLiked reports whether actor has liked the post.
func (s *EngagementService) HasLiked(actorID, postID uint) (bool, error) {
	return repositories.NewPostgresLikeRepository(s.db).HasUserLikedPost(postID, actorID)
}
