package repositories

import (
	"context"

	"github.com/anonto42/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// ShoppingListRepository computes consolidated shopping lists.
type ShoppingListRepository interface {
	AggregateCart(ctx context.Context, userID uint) ([]models.ShoppingListItem, error)
}

type PostgresShoppingListRepository struct {
	db *gorm.DB
}

func NewPostgresShoppingListRepository(db *gorm.DB) *PostgresShoppingListRepository {
	return &PostgresShoppingListRepository{db: db}
}

// AggregateCart sums ingredient amounts over every recipe in the user's cart,
// grouped by (name, unit) and ordered by name, in one query.
func (r *PostgresShoppingListRepository) AggregateCart(ctx context.Context, userID uint) ([]models.ShoppingListItem, error) {
	items := make([]models.ShoppingListItem, 0)
	err := r.db.WithContext(ctx).
		Table("recipe_ingredients AS ri").
		Select("i.name AS name, i.measurement_unit AS unit, SUM(ri.amount) AS total_amount").
		Joins("JOIN ingredients AS i ON i.id = ri.ingredient_id").
		Joins("JOIN shopping_carts AS sc ON sc.recipe_id = ri.recipe_id").
		Where("sc.user_id = ?", userID).
		Group("i.name, i.measurement_unit").
		Order("i.name, i.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
