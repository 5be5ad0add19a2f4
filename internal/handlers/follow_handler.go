package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mglush/krug/backend/internal/repositories"
	"github.com/mglush/krug/backend/internal/services"
	"gorm.io/gorm"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	socialGraph    *services.SocialGraphService
	userRepository repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(socialGraph *services.SocialGraphService, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{
		socialGraph:    socialGraph,
		userRepository: userRepo,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:username/follow", h.FollowUser)
	g.DELETE("/users/:username/follow", h.UnfollowUser)
	g.GET("/users/:username/following-status", h.GetFollowingStatus)
	g.GET("/users/:username/followers", h.GetFollowers)
	g.GET("/users/:username/following", h.GetFollowing)
}

func (h *FollowHandler) resolveTarget(c echo.Context) (uint, error) {
	user, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return 0, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return user.ID, nil
}

// FollowUser follows a user by username. Following an already-followed
// user reports success with created=false rather than an error.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := h.resolveTarget(c)
	if err != nil {
		return err
	}

	created, err := h.socialGraph.Follow(currentUserID, targetID)
	if err != nil {
		return httpError(err)
	}

	status := http.StatusOK
	message := "Already following."
	if created {
		status = http.StatusCreated
		message = "Successfully followed."
	}
	return c.JSON(status, echo.Map{"message": message, "created": created})
}

// UnfollowUser unfollows a user by username
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := h.resolveTarget(c)
	if err != nil {
		return err
	}

	if err := h.socialGraph.Unfollow(currentUserID, targetID); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Unfollowed successfully.", "removed": true})
}

// GetFollowingStatus reports whether the authenticated user follows the
// target user
func (h *FollowHandler) GetFollowingStatus(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := h.resolveTarget(c)
	if err != nil {
		return err
	}

	isFollowing, err := h.socialGraph.IsFollowing(currentUserID, targetID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"is_following": isFollowing})
}

// GetFollowers lists the users following the target user
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	targetID, err := h.resolveTarget(c)
	if err != nil {
		return err
	}
	users, err := h.socialGraph.Followers(targetID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetFollowing lists the users the target user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	targetID, err := h.resolveTarget(c)
	if err != nil {
		return err
	}
	users, err := h.socialGraph.Following(targetID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}
