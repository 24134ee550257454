package models

import "time"

const (
	MinCookingTime = 1
	MaxCookingTime = 200
	MinAmount      = 1
)

// Recipe is the aggregate root: the recipe row plus its ingredient amounts and tags.
type Recipe struct {
	ID          uint               `gorm:"primaryKey"`
	AuthorID    uint               `gorm:"not null;index"`
	Author      User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Name        string             `gorm:"size:200;not null"`
	Image       string             `gorm:"size:500;not null"`
	Text        string             `gorm:"type:text;not null"`
	CookingTime int                `gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1 AND cooking_time <= 200"`
	PubDate     time.Time          `gorm:"autoCreateTime;index"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
}

// RecipeIngredient is the association between a recipe and an ingredient,
// carrying the amount. An ingredient appears at most once per recipe.
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint       `gorm:"not null;index;uniqueIndex:idx_recipe_ingredient"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
	Amount       int        `gorm:"not null;check:chk_recipe_ingredients_amount,amount BETWEEN 1 AND 2147483647"`
}

// MaxAmount is the largest ingredient amount accepted. Cart totals are summed
// in 64 bits, so per-row amounts stay within 32.
const MaxAmount = 2147483647

// IngredientAmount is one ingredient line of a write request.
type IngredientAmount struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"gte=1,lte=2147483647"`
}

// RecipeWriteRequest is the body of POST and PATCH /recipes. Nil means "not
// supplied"; on create every field is required, on update nil fields are kept.
type RecipeWriteRequest struct {
	Ingredients *[]IngredientAmount `json:"ingredients" validate:"omitnil,min=1,dive"`
	Tags        *[]uint             `json:"tags" validate:"omitnil,min=1,dive,required"`
	Image       *string             `json:"image" validate:"omitnil,notblank"`
	Name        *string             `json:"name" validate:"omitnil,notblank,max=200"`
	Text        *string             `json:"text" validate:"omitnil,notblank"`
	CookingTime *int                `json:"cooking_time" validate:"omitnil,gte=1,lte=200"`
}

// RecipeIngredientView is an ingredient row expanded with its catalog data.
type RecipeIngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is the denormalized read shape of a recipe for one viewer.
type RecipeView struct {
	ID               uint                   `json:"id"`
	Tags             []Tag                  `json:"tags"`
	Author           UserView               `json:"author"`
	Ingredients      []RecipeIngredientView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
	PubDate          time.Time              `json:"pub_date"`
}

// RecipeSummary is the compact shape returned by membership toggles and
// embedded in subscription listings.
type RecipeSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func (r Recipe) Summary() RecipeSummary {
	return RecipeSummary{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// RecipeFilter narrows a recipe listing. ViewerID 0 is anonymous, in which
// case the favorite and cart flags are ignored.
type RecipeFilter struct {
	ViewerID         uint
	AuthorID         uint
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}
