package repositories

import (
	"context"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const recipeOrder = "recipes.pub_date DESC, recipes.name ASC, recipes.id DESC"

// RecipeRepository defines the interface for recipe aggregate persistence.
// Every write that touches more than one table runs in a single transaction.
type RecipeRepository interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tagIDs []uint) error
	UpdateRecipe(ctx context.Context, id uint, updates map[string]any, ingredients *[]models.RecipeIngredient, tagIDs *[]uint) error
	DeleteRecipe(ctx context.Context, id uint) error
	FindRecipe(ctx context.Context, id uint) (*models.Recipe, error)
	GetRecipeByID(ctx context.Context, id uint) (*models.Recipe, error)
	GetRecipes(ctx context.Context, filter models.RecipeFilter, page models.Page) (models.PageResult[models.Recipe], error)
	GetRecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error)
	CountRecipesByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
}

// PostgresRecipeRepository implements RecipeRepository
type PostgresRecipeRepository struct {
	db *gorm.DB
}

// NewPostgresRecipeRepository creates a new PostgresRecipeRepository
func NewPostgresRecipeRepository(db *gorm.DB) *PostgresRecipeRepository {
	return &PostgresRecipeRepository{db: db}
}

// CreateRecipe inserts the recipe row, its ingredient rows and its tag links.
func (r *PostgresRecipeRepository) CreateRecipe(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tagIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		if err := replaceIngredients(tx, recipe.ID, ingredients); err != nil {
			return err
		}
		return replaceTags(tx, recipe.ID, tagIDs)
	})
	return apperrors.FromDB(err, "recipe", recipe.ID, "An ingredient can appear only once in a recipe.")
}

// UpdateRecipe applies column updates and, when given, replaces the ingredient
// rows and tag links wholesale. Nil slices leave associations untouched.
func (r *PostgresRecipeRepository) UpdateRecipe(ctx context.Context, id uint, updates map[string]any, ingredients *[]models.RecipeIngredient, tagIDs *[]uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			res := tx.Model(&models.Recipe{ID: id}).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
		}
		if ingredients != nil {
			if err := replaceIngredients(tx, id, *ingredients); err != nil {
				return err
			}
		}
		if tagIDs != nil {
			return replaceTags(tx, id, *tagIDs)
		}
		return nil
	})
	return apperrors.FromDB(err, "recipe", id, "An ingredient can appear only once in a recipe.")
}

// DeleteRecipe removes the recipe and every row hanging off it.
func (r *PostgresRecipeRepository) DeleteRecipe(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.FavoriteMark{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.CartMark{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Recipe{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("recipe", id)
		}
		return nil
	})
}

// FindRecipe loads the recipe row only
func (r *PostgresRecipeRepository) FindRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return nil, apperrors.FromDB(err, "recipe", id, "")
	}
	return &recipe, nil
}

// GetRecipeByID loads the full aggregate
func (r *PostgresRecipeRepository) GetRecipeByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadAggregate(r.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, apperrors.FromDB(err, "recipe", id, "")
	}
	return &recipe, nil
}

// GetRecipes returns one page of full aggregates, newest first
func (r *PostgresRecipeRepository) GetRecipes(ctx context.Context, filter models.RecipeFilter, page models.Page) (models.PageResult[models.Recipe], error) {
	var result models.PageResult[models.Recipe]
	db := r.db.WithContext(ctx)

	if err := r.filtered(db, filter).Count(&result.Count).Error; err != nil {
		return result, err
	}
	err := preloadAggregate(r.filtered(db, filter)).
		Order(recipeOrder).
		Offset(page.Offset()).Limit(page.Size).
		Find(&result.Items).Error
	return result, err
}

func (r *PostgresRecipeRepository) filtered(db *gorm.DB, f models.RecipeFilter) *gorm.DB {
	q := db.Model(&models.Recipe{})
	if f.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		q = q.Where("recipes.id IN (?)", db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs))
	}
	// the viewer-relative flags mean nothing for anonymous viewers
	if f.ViewerID != 0 && f.IsFavorited {
		q = q.Where("recipes.id IN (?)", db.Table(models.MarkFavorite.Table()).
			Select("recipe_id").Where("user_id = ?", f.ViewerID))
	}
	if f.ViewerID != 0 && f.IsInShoppingCart {
		q = q.Where("recipes.id IN (?)", db.Table(models.MarkCart.Table()).
			Select("recipe_id").Where("user_id = ?", f.ViewerID))
	}
	return q
}

// GetRecipesByAuthor returns the author's recipes newest first; limit <= 0 means all
func (r *PostgresRecipeRepository) GetRecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	q := r.db.WithContext(ctx).Where("author_id = ?", authorID).Order(recipeOrder)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *PostgresRecipeRepository) CountRecipesByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

func preloadAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

func replaceIngredients(tx *gorm.DB, recipeID uint, ingredients []models.RecipeIngredient) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if len(ingredients) == 0 {
		return nil
	}
	rows := make([]models.RecipeIngredient, len(ingredients))
	for i, ing := range ingredients {
		rows[i] = models.RecipeIngredient{RecipeID: recipeID, IngredientID: ing.IngredientID, Amount: ing.Amount}
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

func replaceTags(tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipeID).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]map[string]any, len(tagIDs))
	for i, id := range tagIDs {
		rows[i] = map[string]any{"recipe_id": recipeID, "tag_id": id}
	}
	return tx.Table("recipe_tags").Create(rows).Error
}
