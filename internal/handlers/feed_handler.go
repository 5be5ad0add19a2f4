package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mglush/krug/backend/internal/models"
	"github.com/mglush/krug/backend/internal/repositories"
	"github.com/mglush/krug/backend/internal/services"
)

// FeedHandler serves the follow feed: posts authored by users the
// current user follows, newest first.
type FeedHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	socialGraph    *services.SocialGraphService
	engagement     *services.EngagementService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, socialGraph *services.SocialGraphService, engagement *services.EngagementService) *FeedHandler {
	return &FeedHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		socialGraph:    socialGraph,
		engagement:     engagement,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// EnrichedPost is a post with author info and user-specific flags
type EnrichedPost struct {
	models.Post
	Author  models.UserCompact `json:"author"`
	IsLiked bool               `json:"is_liked"`
}

// GetFeed returns enriched feed posts for the current user
func (h *FeedHandler) GetFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	followingIDs, err := h.socialGraph.FollowingIDs(currentUserID)
	if err != nil {
		return httpError(err)
	}

	offset, limit := parsePagination(c)
	posts, err := h.postRepository.GetPostsByUserIDs(followingIDs, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched := make([]EnrichedPost, 0, len(posts))
	authorCache := make(map[uint]models.UserCompact)
	for _, post := range posts {
		item := EnrichedPost{Post: post}
		if author, ok := authorCache[post.UserID]; ok {
			item.Author = author
		} else if user, err := h.userRepository.GetUserByID(post.UserID); err == nil {
			compact := user.ToCompact()
			authorCache[post.UserID] = compact
			item.Author = compact
		}
		if liked, err := h.engagement.HasLiked(currentUserID, post.ID); err == nil {
			item.IsLiked = liked
		}
		enriched = append(enriched, item)
	}

	return c.JSON(http.StatusOK, echo.Map{"posts": enriched})
}
