package services

import (
	"context"
	"time"

	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/anonto42/foodgram/backend/internal/metrics"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/render"
	"github.com/anonto42/foodgram/backend/internal/repositories"
)

// ShoppingListService sums the ingredients of every recipe in a user's cart.
type ShoppingListService struct {
	repo     repositories.ShoppingListRepository
	renderer render.Renderer
	fallback render.Renderer
}

// NewShoppingListService renders with renderer. When that renderer fails the
// list is served as plain text instead.
func NewShoppingListService(repo repositories.ShoppingListRepository, renderer render.Renderer) *ShoppingListService {
	if renderer == nil {
		renderer = render.NewTextRenderer()
	}
	s := &ShoppingListService{repo: repo, renderer: renderer}
	if renderer.Format() != "text" {
		s.fallback = render.NewTextRenderer()
	}
	return s
}

// BuildShoppingList returns one item per (name, unit) with the summed amount,
// ordered by name then unit.
func (s *ShoppingListService) BuildShoppingList(ctx context.Context, userID uint) ([]models.ShoppingListItem, error) {
	items, err := s.repo.AggregateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.ShoppingListItem{}
	}
	return items, nil
}

// Download builds and renders the user's shopping list.
func (s *ShoppingListService) Download(ctx context.Context, userID uint) (*render.File, error) {
	start := time.Now()
	items, err := s.BuildShoppingList(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines := render.ShoppingListLines(items)

	file, err := s.renderer.Render(ctx, lines)
	format := s.renderer.Format()
	if err != nil && s.fallback != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("format", format).Msg("shopping list render failed, falling back to text")
		format = s.fallback.Format()
		file, err = s.fallback.Render(ctx, lines)
	}
	if err != nil {
		return nil, err
	}
	metrics.RecordShoppingListRender(format, time.Since(start))
	return file, nil
}
