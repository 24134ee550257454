package handlers

import (
	"net/http"

	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// MembershipHandler handles favorite and shopping cart toggles. Both routes
// share the handlers below; only the mark kind differs.
type MembershipHandler struct {
	membershipService *services.MembershipService
}

// NewMembershipHandler creates a new MembershipHandler
func NewMembershipHandler(membershipService *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

// RegisterMembershipRoutes registers favorite and shopping cart routes
func (h *MembershipHandler) RegisterMembershipRoutes(g *echo.Group) {
	for _, kind := range []models.MarkKind{models.MarkFavorite, models.MarkCart} {
		path := "/recipes/:id/" + string(kind)
		g.POST(path, h.add(kind), requireAuth)
		g.DELETE(path, h.remove(kind), requireAuth)
	}
}

func (h *MembershipHandler) add(kind models.MarkKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := getUserIDFromContext(c)
		recipeID, err := parseIDParam(c, "id")
		if err != nil {
			return err
		}
		summary, err := h.membershipService.Add(c.Request().Context(), kind, userID, recipeID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, summary)
	}
}

func (h *MembershipHandler) remove(kind models.MarkKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := getUserIDFromContext(c)
		recipeID, err := parseIDParam(c, "id")
		if err != nil {
			return err
		}
		if err := h.membershipService.Remove(c.Request().Context(), kind, userID, recipeID); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}
