package repositories

import (
	"context"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgAlreadySubscribed = "You are already subscribed to this user."
	msgNotSubscribed     = "You are not subscribed to this user."
)

// SubscriptionRepository defines the interface for follow-edge operations
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	DeleteSubscription(ctx context.Context, userID, authorID uint) error
	IsSubscribed(ctx context.Context, userID, authorID uint) (bool, error)
	GetSubscribedAuthorIDs(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error)
	GetFollowedAuthors(ctx context.Context, userID uint, page models.Page) (models.PageResult[models.User], error)
}

// PostgresSubscriptionRepository implements SubscriptionRepository
type PostgresSubscriptionRepository struct {
	db *gorm.DB
}

// NewPostgresSubscriptionRepository creates a new PostgresSubscriptionRepository
func NewPostgresSubscriptionRepository(db *gorm.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

// CreateSubscription inserts the edge. The unique index decides duplicates and
// the check constraint backs the no-self-follow rule.
func (r *PostgresSubscriptionRepository) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.AuthorID == sub.UserID {
		return apperrors.Invalid("You cannot subscribe to yourself.")
	}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(sub).Error
	if apperrors.IsCheckViolation(err) {
		return apperrors.Invalid("You cannot subscribe to yourself.")
	}
	return apperrors.FromDB(err, "user", sub.AuthorID, msgAlreadySubscribed)
}

func (r *PostgresSubscriptionRepository) DeleteSubscription(ctx context.Context, userID, authorID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotPresent(msgNotSubscribed)
	}
	return nil
}

func (r *PostgresSubscriptionRepository) IsSubscribed(ctx context.Context, userID, authorID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

// GetSubscribedAuthorIDs reports, for each of authorIDs, whether userID follows it
func (r *PostgresSubscriptionRepository) GetSubscribedAuthorIDs(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if userID == 0 || len(authorIDs) == 0 {
		return result, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// GetFollowedAuthors returns one page of the authors userID follows, oldest edge first
func (r *PostgresSubscriptionRepository) GetFollowedAuthors(ctx context.Context, userID uint, page models.Page) (models.PageResult[models.User], error) {
	var result models.PageResult[models.User]
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Subscription{}).Where("user_id = ?", userID).Count(&result.Count).Error; err != nil {
		return result, err
	}
	err := db.Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID).
		Order("subscriptions.id").
		Offset(page.Offset()).Limit(page.Size).
		Find(&result.Items).Error
	return result, err
}
