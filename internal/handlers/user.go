package handlers

import (
	"net/http"

	"github.com/anonto42/foodgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userService *services.UserService
	paginator   Paginator
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService, paginator Paginator) *UserHandler {
	return &UserHandler{userService: userService, paginator: paginator}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users", h.ListUsers)
	g.GET("/users/me", h.GetMe, requireAuth)
	g.GET("/users/:id", h.GetUser)
}

// ListUsers returns a page of users with is_subscribed relative to the viewer
func (h *UserHandler) ListUsers(c echo.Context) error {
	page, err := h.paginator.Page(c)
	if err != nil {
		return err
	}
	res, err := h.userService.ListUsers(c.Request().Context(), getUserIDFromContext(c), page)
	if err != nil {
		return err
	}
	out, err := newPaginated(c, page, res.Items, res.Count)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.userService.GetUser(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetMe returns the authenticated user's profile
func (h *UserHandler) GetMe(c echo.Context) error {
	userID := getUserIDFromContext(c)
	user, err := h.userService.GetUser(c.Request().Context(), userID, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
