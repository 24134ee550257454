package services

import (
	"context"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/anonto42/foodgram/backend/internal/metrics"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/repositories"
)

// SubscriptionService manages follow edges between users.
type SubscriptionService struct {
	users         repositories.UserRepository
	subscriptions repositories.SubscriptionRepository
	recipes       repositories.RecipeRepository
}

func NewSubscriptionService(
	users repositories.UserRepository,
	subscriptions repositories.SubscriptionRepository,
	recipes repositories.RecipeRepository,
) *SubscriptionService {
	return &SubscriptionService{users: users, subscriptions: subscriptions, recipes: recipes}
}

// Follow makes userID follow authorID. recipesLimit caps the recipe preview
// in the returned view; zero or less means no cap.
func (s *SubscriptionService) Follow(ctx context.Context, userID, authorID uint, recipesLimit int) (view *models.SubscriptionView, err error) {
	defer func() { metrics.RecordSubscriptionChange("follow", err) }()

	if userID == authorID {
		return nil, apperrors.Invalid("You cannot subscribe to yourself.")
	}
	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if err := s.subscriptions.CreateSubscription(ctx, &models.Subscription{UserID: userID, AuthorID: authorID}); err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Uint("user_id", userID).Uint("author_id", authorID).Msg("subscribed")

	views, err := s.buildViews(ctx, []models.User{*author}, map[uint]bool{authorID: true}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Unfollow removes the edge; a missing edge is a client error.
func (s *SubscriptionService) Unfollow(ctx context.Context, userID, authorID uint) (err error) {
	defer func() { metrics.RecordSubscriptionChange("unfollow", err) }()

	if _, err := s.users.GetUserByID(ctx, authorID); err != nil {
		return err
	}
	return s.subscriptions.DeleteSubscription(ctx, userID, authorID)
}

// ListFollowedAuthors returns one page of the authors userID follows.
func (s *SubscriptionService) ListFollowedAuthors(ctx context.Context, userID uint, recipesLimit int, page models.Page) (models.PageResult[models.SubscriptionView], error) {
	var out models.PageResult[models.SubscriptionView]
	res, err := s.subscriptions.GetFollowedAuthors(ctx, userID, page)
	if err != nil {
		return out, err
	}
	subscribed := make(map[uint]bool, len(res.Items))
	for _, u := range res.Items {
		subscribed[u.ID] = true
	}
	views, err := s.buildViews(ctx, res.Items, subscribed, recipesLimit)
	if err != nil {
		return out, err
	}
	out.Items, out.Count = views, res.Count
	return out, nil
}

func (s *SubscriptionService) buildViews(ctx context.Context, authors []models.User, subscribed map[uint]bool, recipesLimit int) ([]models.SubscriptionView, error) {
	ids := make([]uint, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	counts, err := s.recipes.CountRecipesByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.SubscriptionView, len(authors))
	for i, a := range authors {
		recipes, err := s.recipes.GetRecipesByAuthor(ctx, a.ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		summaries := make([]models.RecipeSummary, len(recipes))
		for j, r := range recipes {
			summaries[j] = r.Summary()
		}
		views[i] = models.SubscriptionView{
			UserView:     a.ToView(subscribed[a.ID]),
			Recipes:      summaries,
			RecipesCount: counts[a.ID],
		}
	}
	return views, nil
}
