package services

import (
	"context"

	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/anonto42/foodgram/backend/internal/metrics"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/repositories"
)

// MembershipService toggles favorite and shopping cart marks. Both kinds
// share one code path.
type MembershipService struct {
	recipes repositories.RecipeRepository
	marks   repositories.MarkRepository
}

func NewMembershipService(recipes repositories.RecipeRepository, marks repositories.MarkRepository) *MembershipService {
	return &MembershipService{recipes: recipes, marks: marks}
}

// Add marks the recipe for the user and returns its short form. Marking
// twice yields a ConflictError from the unique index.
func (s *MembershipService) Add(ctx context.Context, kind models.MarkKind, userID, recipeID uint) (summary *models.RecipeSummary, err error) {
	defer func() { metrics.RecordMembershipChange(string(kind), "add", err) }()

	recipe, err := s.recipes.FindRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.marks.AddMark(ctx, kind, userID, recipeID); err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Debug().Str("kind", string(kind)).Uint("user_id", userID).Uint("recipe_id", recipeID).Msg("mark added")
	out := recipe.Summary()
	return &out, nil
}

// Remove drops the mark. A missing mark is a client error, not a no-op.
func (s *MembershipService) Remove(ctx context.Context, kind models.MarkKind, userID, recipeID uint) (err error) {
	defer func() { metrics.RecordMembershipChange(string(kind), "remove", err) }()

	if _, err := s.recipes.FindRecipe(ctx, recipeID); err != nil {
		return err
	}
	return s.marks.RemoveMark(ctx, kind, userID, recipeID)
}
