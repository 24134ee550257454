package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SubscriptionHandler handles follow/unfollow HTTP requests
type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
	paginator           Paginator
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptionService *services.SubscriptionService, paginator Paginator) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService, paginator: paginator}
}

// RegisterSubscriptionRoutes registers subscription routes
func (h *SubscriptionHandler) RegisterSubscriptionRoutes(g *echo.Group) {
	g.GET("/users/subscriptions", h.ListSubscriptions, requireAuth)
	g.POST("/users/:id/subscribe", h.Subscribe, requireAuth)
	g.DELETE("/users/:id/subscribe", h.Unsubscribe, requireAuth)
}

// Subscribe makes the current user follow another user
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	authorID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	limit, err := recipesLimit(c)
	if err != nil {
		return err
	}

	view, err := h.subscriptionService.Follow(c.Request().Context(), currentUserID, authorID, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

// Unsubscribe removes the follow edge
func (h *SubscriptionHandler) Unsubscribe(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	authorID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.subscriptionService.Unfollow(c.Request().Context(), currentUserID, authorID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSubscriptions returns the authors the current user follows
func (h *SubscriptionHandler) ListSubscriptions(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	page, err := h.paginator.Page(c)
	if err != nil {
		return err
	}
	limit, err := recipesLimit(c)
	if err != nil {
		return err
	}

	res, err := h.subscriptionService.ListFollowedAuthors(c.Request().Context(), currentUserID, limit, page)
	if err != nil {
		return err
	}
	out, err := newPaginated(c, page, res.Items, res.Count)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// recipesLimit reads ?recipes_limit; absent means no limit.
func recipesLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("recipes_limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.InvalidField("recipes_limit", "must be a non-negative integer")
	}
	return n, nil
}
