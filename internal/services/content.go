package services

import (
	"errors"

	"github.com/mglush/krug/backend/internal/models"
	"github.com/mglush/krug/backend/internal/repositories"
	"gorm.io/gorm"
)

// ContentService owns posts and comments: creation, listing and the
// ownership rules on mutation. Post mutation is author-only; comment
// deletion additionally allows the parent post's author (delete is
// deliberately more permissive than edit).
type ContentService struct {
	db *gorm.DB
}

// NewContentService creates a new ContentService
func NewContentService(db *gorm.DB) *ContentService {
	return &ContentService{db: db}
}

// CreatePost creates a post authored by actor.
func (s *ContentService) CreatePost(actorID uint, content string) (*models.Post, error) {
	post := &models.Post{
		UserID:  actorID,
		Content: content,
	}
	if err := repositories.NewPostgresPostRepository(s.db).CreatePost(post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost retrieves a post by ID.
func (s *ContentService) GetPost(postID uint) (*models.Post, error) {
	post, err := repositories.NewPostgresPostRepository(s.db).GetPostByID(postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return post, err
}

// ListPosts returns all posts newest first.
func (s *ContentService) ListPosts(offset, limit int) ([]models.Post, error) {
	return repositories.NewPostgresPostRepository(s.db).GetAllPosts(offset, limit)
}

// ListUserPosts returns a user's posts newest first.
func (s *ContentService) ListUserPosts(userID uint, offset, limit int) ([]models.Post, error) {
	return repositories.NewPostgresPostRepository(s.db).GetPostsByUserID(userID, offset, limit)
}

// UpdatePost replaces the post's content. Only the author may update;
// anyone else gets ErrPermissionDenied, never ErrNotFound, so the
// existence of the post is not the thing being hidden.
func (s *ContentService) UpdatePost(actorID, postID uint, content string) (*models.Post, error) {
	posts := repositories.NewPostgresPostRepository(s.db)
	post, err := posts.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if post.UserID != actorID {
		return nil, ErrPermissionDenied
	}
	post.Content = content
	if err := posts.UpdatePost(post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post and cascades to its comments and likes in
// one transaction, so no engagement rows are left orphaned.
func (s *ContentService) DeletePost(actorID, postID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		posts := repositories.NewPostgresPostRepository(tx)
		post, err := posts.GetPostByID(postID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if post.UserID != actorID {
			return ErrPermissionDenied
		}
		if _, err := repositories.NewPostgresCommentRepository(tx).DeleteCommentsByPostID(postID); err != nil {
			return err
		}
		if _, err := repositories.NewPostgresLikeRepository(tx).DeleteLikesByPostID(postID); err != nil {
			return err
		}
		return posts.DeletePost(postID)
	})
}

// GetComment retrieves a comment addressed as postID/commentID. A
// comment requested under the wrong post yields ErrCommentMismatch,
// guarding against ID confusion across posts.
func (s *ContentService) GetComment(postID, commentID uint) (*models.Comment, error) {
	comment, err := repositories.NewPostgresCommentRepository(s.db).GetCommentByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if comment.PostID != postID {
		return nil, ErrCommentMismatch
	}
	return comment, nil
}

// ListComments returns the post's comments newest first.
func (s *ContentService) ListComments(postID uint) ([]models.Comment, error) {
	if _, err := s.GetPost(postID); err != nil {
		return nil, err
	}
	return repositories.NewPostgresCommentRepository(s.db).GetCommentsByPostID(postID)
}

// UpdateComment replaces the comment's content. Only the comment's
// author may update.
func (s *ContentService) UpdateComment(actorID, postID, commentID uint, content string) (*models.Comment, error) {
	comment, err := s.GetComment(postID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actorID {
		return nil, ErrPermissionDenied
	}
	comment.Content = content
	if err := repositories.NewPostgresCommentRepository(s.db).UpdateComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. Allowed for the comment's author and
// for the parent post's author; everyone else gets ErrPermissionDenied.
func (s *ContentService) DeleteComment(actorID, postID, commentID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		txContent := &ContentService{db: tx}
		comment, err := txContent.GetComment(postID, commentID)
		if err != nil {
			return err
		}
		post, err := txContent.GetPost(postID)
		if err != nil {
			return err
		}
		if comment.UserID != actorID && post.UserID != actorID {
			return ErrPermissionDenied
		}
		return repositories.NewPostgresCommentRepository(tx).DeleteComment(commentID)
	})
}

// SearchPosts returns posts whose content contains the query.
func (s *ContentService) SearchPosts(query string) ([]models.Post, error) {
	return repositories.NewPostgresPostRepository(s.db).SearchPosts(query)
}
