package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/foodgram/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the authenticated user's ID, or 0 for anonymous requests.
func getUserIDFromContext(c echo.Context) uint {
	id, _ := c.Get(middleware.ContextUserIDKey).(uint)
	return id
}

// requireAuth guards routes that need a signed-in user.
var requireAuth = middleware.RequireAuth()

// parseIDParam reads a positive integer path parameter. A malformed ID can
// never match a row, so it is reported as not found.
func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Not found.")
	}
	return uint(id), nil
}
