package models

import "time"

// MarkKind selects one of the two user→recipe marker relations.
type MarkKind string

const (
	MarkFavorite MarkKind = "favorite"
	MarkCart     MarkKind = "shopping_cart"
)

// Table is the relation backing the kind.
func (k MarkKind) Table() string {
	if k == MarkCart {
		return "shopping_carts"
	}
	return "favorites"
}

func (k MarkKind) AlreadyAddedMessage() string {
	if k == MarkCart {
		return "Recipe is already in the shopping cart."
	}
	return "Recipe is already in favorites."
}

func (k MarkKind) NotPresentMessage() string {
	if k == MarkCart {
		return "Recipe is not in the shopping cart."
	}
	return "Recipe is not in favorites."
}

// Mark is the row shape shared by both relations.
type Mark struct {
	ID        uint `gorm:"primaryKey"`
	RecipeID  uint
	UserID    uint
	CreatedAt time.Time
}

// FavoriteMark says a user favorited a recipe.
type FavoriteMark struct {
	ID        uint      `gorm:"primaryKey"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorite_recipe_user"`
	Recipe    Recipe    `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_favorite_recipe_user"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (FavoriteMark) TableName() string { return MarkFavorite.Table() }

// CartMark says a recipe is in a user's shopping cart.
type CartMark struct {
	ID        uint      `gorm:"primaryKey"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_cart_recipe_user"`
	Recipe    Recipe    `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_cart_recipe_user"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (CartMark) TableName() string { return MarkCart.Table() }
