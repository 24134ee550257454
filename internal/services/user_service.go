package services

import (
	"context"

	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/repositories"
)

// UserService serves user profiles relative to a viewer.
type UserService struct {
	users         repositories.UserRepository
	subscriptions repositories.SubscriptionRepository
}

func NewUserService(users repositories.UserRepository, subscriptions repositories.SubscriptionRepository) *UserService {
	return &UserService{users: users, subscriptions: subscriptions}
}

// EnsureUser provisions the account a verified token describes.
func (s *UserService) EnsureUser(ctx context.Context, user *models.User) error {
	return s.users.EnsureUser(ctx, user)
}

func (s *UserService) GetUser(ctx context.Context, viewerID, id uint) (*models.UserView, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.subscriptions.IsSubscribed(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}
	view := user.ToView(subscribed)
	return &view, nil
}

func (s *UserService) ListUsers(ctx context.Context, viewerID uint, page models.Page) (models.PageResult[models.UserView], error) {
	var out models.PageResult[models.UserView]
	res, err := s.users.GetUsers(ctx, page)
	if err != nil {
		return out, err
	}
	ids := make([]uint, len(res.Items))
	for i, u := range res.Items {
		ids[i] = u.ID
	}
	subscribed, err := s.subscriptions.GetSubscribedAuthorIDs(ctx, viewerID, ids)
	if err != nil {
		return out, err
	}
	out.Items = make([]models.UserView, len(res.Items))
	for i, u := range res.Items {
		out.Items[i] = u.ToView(subscribed[u.ID])
	}
	out.Count = res.Count
	return out, nil
}
