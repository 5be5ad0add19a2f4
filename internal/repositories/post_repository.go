package repositories

import (
	"github.com/mglush/krug/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(post *models.Post) error
	GetPostByID(id uint) (*models.Post, error)
	GetPostByIDForUpdate(id uint) (*models.Post, error)
	GetPostsByUserID(userID uint, offset, limit int) ([]models.Post, error)
	GetPostsByUserIDs(userIDs []uint, offset, limit int) ([]models.Post, error)
	GetAllPosts(offset, limit int) ([]models.Post, error)
	UpdatePost(post *models.Post) error
	DeletePost(id uint) error
	SetLikesCount(postID uint, count int64) error
	SearchPosts(query string) ([]models.Post, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost creates a new post
func (r *PostgresPostRepository) CreatePost(post *models.Post) error {
	return r.db.Create(post).Error
}

// GetPostByID retrieves a post by ID
func (r *PostgresPostRepository) GetPostByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPostByIDForUpdate retrieves a post and holds a row lock on it for
// the rest of the surrounding transaction. Writers that recompute
// likes_count serialize on this lock; on drivers without row locks the
// clause is a no-op.
func (r *PostgresPostRepository) GetPostByIDForUpdate(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPostsByUserID retrieves posts by a specific user, newest first
func (r *PostgresPostRepository) GetPostsByUserID(userID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

// GetPostsByUserIDs retrieves posts authored by any of the given users,
// newest first. Used for the follow feed.
func (r *PostgresPostRepository) GetPostsByUserIDs(userIDs []uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	if len(userIDs) == 0 {
		return posts, nil
	}
	err := r.db.Where("user_id IN ?", userIDs).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

// GetAllPosts retrieves all posts with pagination, newest first
func (r *PostgresPostRepository) GetAllPosts(offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

// UpdatePost updates an existing post
func (r *PostgresPostRepository) UpdatePost(post *models.Post) error {
	return r.db.Save(post).Error
}

// DeletePost deletes a post by ID
func (r *PostgresPostRepository) DeletePost(id uint) error {
	res := r.db.Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetLikesCount persists a freshly recomputed likes counter
func (r *PostgresPostRepository) SetLikesCount(postID uint, count int64) error {
	return r.db.Model(&models.Post{}).Where("id = ?", postID).Update("likes_count", count).Error
}

// SearchPosts searches for posts by content (case-insensitive substring)
func (r *PostgresPostRepository) SearchPosts(query string) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Where("LOWER(content) LIKE LOWER(?)", "%"+query+"%").
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}
