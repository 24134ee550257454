package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/anonto42/foodgram/backend/internal/metrics"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/repositories"
	"github.com/anonto42/foodgram/backend/internal/storage"
	"github.com/anonto42/foodgram/backend/internal/validation"
)

const msgRequired = "this field is required"

// RecipeService owns the recipe aggregate: validation, the transactional
// write path and the viewer-relative read path.
type RecipeService struct {
	recipes       repositories.RecipeRepository
	tags          repositories.CatalogRepository[models.Tag]
	ingredients   repositories.CatalogRepository[models.Ingredient]
	marks         repositories.MarkRepository
	subscriptions repositories.SubscriptionRepository
	images        storage.ImageStore
}

func NewRecipeService(
	recipes repositories.RecipeRepository,
	tags repositories.CatalogRepository[models.Tag],
	ingredients repositories.CatalogRepository[models.Ingredient],
	marks repositories.MarkRepository,
	subscriptions repositories.SubscriptionRepository,
	images storage.ImageStore,
) *RecipeService {
	return &RecipeService{
		recipes:       recipes,
		tags:          tags,
		ingredients:   ingredients,
		marks:         marks,
		subscriptions: subscriptions,
		images:        images,
	}
}

// CreateRecipe validates req completely, stores the image and writes the
// aggregate in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uint, req *models.RecipeWriteRequest) (view *models.RecipeView, err error) {
	defer func() { metrics.RecordRecipeWrite("create", err) }()

	verr := structErrors(req)
	requireField(verr, "ingredients", req.Ingredients == nil)
	requireField(verr, "tags", req.Tags == nil)
	requireField(verr, "image", req.Image == nil)
	requireField(verr, "name", req.Name == nil)
	requireField(verr, "text", req.Text == nil)
	requireField(verr, "cooking_time", req.CookingTime == nil)

	rows := s.checkAssociations(ctx, req, verr)
	img := decodeImage(req.Image, verr)
	if verr.HasErrors() {
		return nil, verr
	}
	if rows.err != nil {
		return nil, rows.err
	}

	ref, err := s.images.Save(ctx, img.Data, img.Extension)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(*req.Name),
		Image:       ref,
		Text:        *req.Text,
		CookingTime: *req.CookingTime,
	}
	if err := s.recipes.CreateRecipe(ctx, recipe, rows.ingredients, *req.Tags); err != nil {
		s.discardImage(ctx, ref)
		return nil, err
	}

	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("recipe created")
	return s.GetRecipe(ctx, authorID, recipe.ID)
}

// UpdateRecipe applies a partial update. Only the author may update. Supplied
// ingredient and tag lists replace the old ones; omitted ones are kept.
func (s *RecipeService) UpdateRecipe(ctx context.Context, viewerID, recipeID uint, req *models.RecipeWriteRequest) (view *models.RecipeView, err error) {
	defer func() { metrics.RecordRecipeWrite("update", err) }()

	current, err := s.recipes.FindRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if current.AuthorID != viewerID {
		return nil, apperrors.Forbidden("Only the author can change this recipe.")
	}

	verr := structErrors(req)
	rows := s.checkAssociations(ctx, req, verr)
	var img *storage.Image
	if req.Image != nil {
		img = decodeImage(req.Image, verr)
	}
	if verr.HasErrors() {
		return nil, verr
	}
	if rows.err != nil {
		return nil, rows.err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if req.CookingTime != nil {
		updates["cooking_time"] = *req.CookingTime
	}
	var newRef string
	if img != nil {
		newRef, err = s.images.Save(ctx, img.Data, img.Extension)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		updates["image"] = newRef
	}

	var ingredients *[]models.RecipeIngredient
	if req.Ingredients != nil {
		ingredients = &rows.ingredients
	}
	if err := s.recipes.UpdateRecipe(ctx, recipeID, updates, ingredients, req.Tags); err != nil {
		if newRef != "" {
			s.discardImage(ctx, newRef)
		}
		return nil, err
	}
	if newRef != "" {
		s.discardImage(ctx, current.Image)
	}

	return s.GetRecipe(ctx, viewerID, recipeID)
}

// DeleteRecipe removes the aggregate and everything referencing it.
func (s *RecipeService) DeleteRecipe(ctx context.Context, viewerID, recipeID uint) (err error) {
	defer func() { metrics.RecordRecipeWrite("delete", err) }()

	current, err := s.recipes.FindRecipe(ctx, recipeID)
	if err != nil {
		return err
	}
	if current.AuthorID != viewerID {
		return apperrors.Forbidden("Only the author can delete this recipe.")
	}
	if err := s.recipes.DeleteRecipe(ctx, recipeID); err != nil {
		return err
	}
	s.discardImage(ctx, current.Image)
	return nil
}

// GetRecipe returns the aggregate as seen by viewerID (0 for anonymous).
func (s *RecipeService) GetRecipe(ctx context.Context, viewerID, recipeID uint) (*models.RecipeView, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	views, err := s.buildViews(ctx, viewerID, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListRecipes returns one page of recipes newest first.
func (s *RecipeService) ListRecipes(ctx context.Context, filter models.RecipeFilter, page models.Page) (models.PageResult[models.RecipeView], error) {
	var out models.PageResult[models.RecipeView]
	res, err := s.recipes.GetRecipes(ctx, filter, page)
	if err != nil {
		return out, err
	}
	views, err := s.buildViews(ctx, filter.ViewerID, res.Items)
	if err != nil {
		return out, err
	}
	out.Items, out.Count = views, res.Count
	return out, nil
}

func (s *RecipeService) buildViews(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]models.RecipeView, error) {
	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, err := s.marks.GetMarkedRecipeIDs(ctx, models.MarkFavorite, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.marks.GetMarkedRecipeIDs(ctx, models.MarkCart, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.subscriptions.GetSubscribedAuthorIDs(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.RecipeView, len(recipes))
	for i, r := range recipes {
		ingredients := make([]models.RecipeIngredientView, len(r.Ingredients))
		for j, ri := range r.Ingredients {
			ingredients[j] = models.RecipeIngredientView{
				ID:              ri.IngredientID,
				Name:            ri.Ingredient.Name,
				MeasurementUnit: ri.Ingredient.MeasurementUnit,
				Amount:          ri.Amount,
			}
		}
		tags := r.Tags
		if tags == nil {
			tags = []models.Tag{}
		}
		views[i] = models.RecipeView{
			ID:               r.ID,
			Tags:             tags,
			Author:           r.Author.ToView(subscribed[r.AuthorID]),
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			PubDate:          r.PubDate,
		}
	}
	return views, nil
}

type checkedRows struct {
	ingredients []models.RecipeIngredient
	err         error
}

// checkAssociations records duplicate and unknown ingredient/tag ids in verr
// and builds the ingredient rows to write. A storage failure is returned in
// err so it is not reported as bad input.
func (s *RecipeService) checkAssociations(ctx context.Context, req *models.RecipeWriteRequest, verr *apperrors.ValidationError) checkedRows {
	var out checkedRows

	if req.Ingredients != nil && len(*req.Ingredients) > 0 {
		ids := make([]uint, 0, len(*req.Ingredients))
		seen := make(map[uint]bool)
		for _, line := range *req.Ingredients {
			if seen[line.ID] {
				verr.Add("ingredients", fmt.Sprintf("Ingredient %d is already in the recipe.", line.ID))
				continue
			}
			seen[line.ID] = true
			ids = append(ids, line.ID)
			out.ingredients = append(out.ingredients, models.RecipeIngredient{IngredientID: line.ID, Amount: line.Amount})
		}
		found, err := s.ingredients.GetByIDs(ctx, ids)
		if err != nil {
			out.err = err
			return out
		}
		for _, id := range missingIDs(ids, found, func(i models.Ingredient) uint { return i.ID }) {
			verr.Add("ingredients", fmt.Sprintf("Ingredient %d does not exist.", id))
		}
	}

	if req.Tags != nil && len(*req.Tags) > 0 {
		ids := make([]uint, 0, len(*req.Tags))
		seen := make(map[uint]bool)
		for _, id := range *req.Tags {
			if seen[id] {
				verr.Add("tags", fmt.Sprintf("Tag %d is listed more than once.", id))
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
		found, err := s.tags.GetByIDs(ctx, ids)
		if err != nil {
			out.err = err
			return out
		}
		for _, id := range missingIDs(ids, found, func(t models.Tag) uint { return t.ID }) {
			verr.Add("tags", fmt.Sprintf("Tag %d does not exist.", id))
		}
	}

	return out
}

func (s *RecipeService) discardImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("image", ref).Msg("failed to delete recipe image")
	}
}

func structErrors(req *models.RecipeWriteRequest) *apperrors.ValidationError {
	err := validation.ValidateStruct(req)
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	if err != nil {
		return apperrors.Invalid(err.Error())
	}
	return &apperrors.ValidationError{}
}

func requireField(verr *apperrors.ValidationError, field string, missing bool) {
	if missing {
		verr.Add(field, msgRequired)
	}
}

func decodeImage(uri *string, verr *apperrors.ValidationError) *storage.Image {
	if uri == nil || strings.TrimSpace(*uri) == "" {
		return nil
	}
	img, err := storage.DecodeDataURI(*uri)
	if err != nil {
		verr.Add("image", err.Error())
		return nil
	}
	return img
}

func missingIDs[T any](want []uint, found []T, id func(T) uint) []uint {
	have := make(map[uint]bool, len(found))
	for _, f := range found {
		have[id(f)] = true
	}
	var missing []uint
	for _, w := range want {
		if !have[w] {
			missing = append(missing, w)
		}
	}
	return missing
}
