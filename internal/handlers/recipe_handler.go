package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/render"
	"github.com/anonto42/foodgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// RecipeHandler handles HTTP requests for the recipe aggregate
type RecipeHandler struct {
	recipeService       *services.RecipeService
	shoppingListService *services.ShoppingListService
	paginator           Paginator
}

// NewRecipeHandler creates a new RecipeHandler
func NewRecipeHandler(recipeService *services.RecipeService, shoppingListService *services.ShoppingListService, paginator Paginator) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		shoppingListService: shoppingListService,
		paginator:           paginator,
	}
}

// RegisterRecipeRoutes registers recipe routes
func (h *RecipeHandler) RegisterRecipeRoutes(g *echo.Group) {
	g.GET("/recipes", h.ListRecipes)
	g.POST("/recipes", h.CreateRecipe, requireAuth)
	g.GET("/recipes/download_shopping_cart", h.DownloadShoppingCart, requireAuth)
	g.GET("/recipes/:id", h.GetRecipe)
	g.PATCH("/recipes/:id", h.UpdateRecipe, requireAuth)
	g.DELETE("/recipes/:id", h.DeleteRecipe, requireAuth)
}

// ListRecipes returns a page of recipes filtered by query parameters
func (h *RecipeHandler) ListRecipes(c echo.Context) error {
	page, err := h.paginator.Page(c)
	if err != nil {
		return err
	}

	filter := models.RecipeFilter{
		ViewerID:         getUserIDFromContext(c),
		TagSlugs:         c.QueryParams()["tags"],
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
	}
	if raw := c.QueryParam("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid author ID")
		}
		filter.AuthorID = uint(id)
	}

	res, err := h.recipeService.ListRecipes(c.Request().Context(), filter, page)
	if err != nil {
		return err
	}
	out, err := newPaginated(c, page, res.Items, res.Count)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// CreateRecipe creates a recipe authored by the current user
func (h *RecipeHandler) CreateRecipe(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.RecipeWriteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	view, err := h.recipeService.CreateRecipe(c.Request().Context(), userID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

// GetRecipe returns one recipe
func (h *RecipeHandler) GetRecipe(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	view, err := h.recipeService.GetRecipe(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// UpdateRecipe partially updates a recipe; only the author may do this
func (h *RecipeHandler) UpdateRecipe(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.RecipeWriteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	view, err := h.recipeService.UpdateRecipe(c.Request().Context(), userID, id, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// DeleteRecipe deletes a recipe; only the author may do this
func (h *RecipeHandler) DeleteRecipe(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.recipeService.DeleteRecipe(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DownloadShoppingCart sends the current user's aggregated shopping list as an attachment
func (h *RecipeHandler) DownloadShoppingCart(c echo.Context) error {
	userID := getUserIDFromContext(c)
	file, err := h.shoppingListService.Download(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return sendFile(c, file)
}

func sendFile(c echo.Context, file *render.File) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Blob(http.StatusOK, file.ContentType, file.Data)
}

// queryFlag accepts 1/0 and true/false.
func queryFlag(c echo.Context, name string) bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	return err == nil && v
}
