package handlers

import (
	"net/http"

	"github.com/anonto42/foodgram/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CatalogHandler serves a read-only reference collection (tags, ingredients).
// Both collections are unpaginated; searchParam, when set, names the query
// parameter used for prefix search.
type CatalogHandler[T repositories.CatalogEntity] struct {
	repo        repositories.CatalogRepository[T]
	searchParam string
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler[T repositories.CatalogEntity](repo repositories.CatalogRepository[T], searchParam string) *CatalogHandler[T] {
	return &CatalogHandler[T]{repo: repo, searchParam: searchParam}
}

// RegisterCatalogRoutes registers list and detail routes under prefix
func (h *CatalogHandler[T]) RegisterCatalogRoutes(g *echo.Group, prefix string) {
	g.GET(prefix, h.List)
	g.GET(prefix+"/:id", h.Get)
}

func (h *CatalogHandler[T]) List(c echo.Context) error {
	var search string
	if h.searchParam != "" {
		search = c.QueryParam(h.searchParam)
	}
	items, err := h.repo.List(c.Request().Context(), search)
	if err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler[T]) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	item, err := h.repo.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}
