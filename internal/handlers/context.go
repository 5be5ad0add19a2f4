package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mglush/krug/backend/internal/models"
	"github.com/mglush/krug/backend/internal/services"
)

// getUserIDFromContext extracts the authenticated user's ID from the
// JWT claims stored by the auth middleware. Returns 0 when the request
// carries no valid identity.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

// httpError maps the service error taxonomy to HTTP statuses. Anything
// outside the taxonomy is a genuine server error.
func httpError(err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrLikeNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Like not found")
	case errors.Is(err, services.ErrPermissionDenied):
		return echo.NewHTTPError(http.StatusForbidden, "You don't have permission to perform this action")
	case errors.Is(err, services.ErrSelfFollow):
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	case errors.Is(err, services.ErrNotFollowing):
		return echo.NewHTTPError(http.StatusBadRequest, "You are not following this user")
	case errors.Is(err, services.ErrCommentMismatch):
		return echo.NewHTTPError(http.StatusBadRequest, "Comment does not belong to this post")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
