package models

import "time"

// Subscription is a directed follow edge: UserID follows AuthorID.
type Subscription struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index;uniqueIndex:idx_subscription_author_user;check:chk_subscriptions_not_self,author_id <> user_id"`
	Author    User      `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	UserID    uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_subscription_author_user"`
	User      User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

// SubscriptionView is a followed author with a preview of their recipes.
type SubscriptionView struct {
	UserView
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}
