package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mglush/krug/backend/internal/repositories"
	"github.com/mglush/krug/backend/internal/services"
)

// SearchHandler searches users by username and posts by content.
// Plain substring matching; no search index behind it.
type SearchHandler struct {
	userRepository repositories.UserRepository
	content        *services.ContentService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(userRepo repositories.UserRepository, content *services.ContentService) *SearchHandler {
	return &SearchHandler{
		userRepository: userRepo,
		content:        content,
	}
}

// RegisterSearchRoutes registers search routes
func (h *SearchHandler) RegisterSearchRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
	g.GET("/users/search", h.SearchUsers)
}

// Search returns users and posts matching the query
func (h *SearchHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}

	users, err := h.userRepository.SearchUsers(query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	posts, err := h.content.SearchPosts(query)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users": users,
		"posts": posts,
	})
}

// SearchUsers searches for users by username
func (h *SearchHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}

	users, err := h.userRepository.SearchUsers(query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}
