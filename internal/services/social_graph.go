package services

import (
	"errors"

	"github.com/mglush/krug/backend/internal/models"
	"github.com/mglush/krug/backend/internal/repositories"
	"gorm.io/gorm"
)

// SocialGraphService maintains directed follow edges between users.
// Edge uniqueness lives in the database (composite unique index), so
// concurrent duplicate follows race on the insert and the loser is
// folded into the idempotent "already following" result.
type SocialGraphService struct {
	db *gorm.DB
}

// NewSocialGraphService creates a new SocialGraphService
func NewSocialGraphService(db *gorm.DB) *SocialGraphService {
	return &SocialGraphService{db: db}
}

// Follow creates a follow edge from actor to target. Returns
// created=false without error when the edge already exists. The target
// is notified only on first creation, in the same transaction as the
// edge insert.
func (s *SocialGraphService) Follow(actorID, targetID uint) (created bool, err error) {
	if actorID == targetID {
		return false, ErrSelfFollow
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		follows := repositories.NewPostgresFollowRepository(tx)
		insertErr := follows.CreateFollow(&models.Follow{
			FollowerID:  actorID,
			FollowingID: targetID,
		})
		if insertErr != nil {
			if errors.Is(insertErr, gorm.ErrDuplicatedKey) {
				return nil
			}
			return insertErr
		}
		created = true
		return notify(tx, targetID, actorID, models.NotificationStartedFollowing)
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// Unfollow removes the edge from actor to target. Returns
// ErrNotFollowing when no edge exists.
func (s *SocialGraphService) Unfollow(actorID, targetID uint) error {
	err := repositories.NewPostgresFollowRepository(s.db).DeleteFollow(actorID, targetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFollowing
	}
	return err
}

// IsFollowing reports whether actor currently follows target.
func (s *SocialGraphService) IsFollowing(actorID, targetID uint) (bool, error) {
	return repositories.NewPostgresFollowRepository(s.db).IsFollowing(actorID, targetID)
}

// FollowerCount counts edges pointing at the user. Computed on demand
// from the edges, never cached.
func (s *SocialGraphService) FollowerCount(userID uint) (int64, error) {
	return repositories.NewPostgresFollowRepository(s.db).GetFollowersCount(userID)
}

// FollowingCount counts edges originating from the user.
func (s *SocialGraphService) FollowingCount(userID uint) (int64, error) {
	return repositories.NewPostgresFollowRepository(s.db).GetFollowingCount(userID)
}

// Followers lists the users following userID.
func (s *SocialGraphService) Followers(userID uint) ([]models.User, error) {
	return repositories.NewPostgresFollowRepository(s.db).GetFollowers(userID)
}

// Following lists the users userID follows.
func (s *SocialGraphService) Following(userID uint) ([]models.User, error) {
	return repositories.NewPostgresFollowRepository(s.db).GetFollowing(userID)
}

// FollowingIDs returns the IDs of users userID follows. Used to build
// the feed.
func (s *SocialGraphService) FollowingIDs(userID uint) ([]uint, error) {
	return repositories.NewPostgresFollowRepository(s.db).GetFollowingIDs(userID)
}
