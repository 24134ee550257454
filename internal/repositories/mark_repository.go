package repositories

import (
	"context"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// MarkRepository stores favorite and shopping cart marks. Both relations have
// the same shape; kind selects the table.
type MarkRepository interface {
	AddMark(ctx context.Context, kind models.MarkKind, userID, recipeID uint) error
	RemoveMark(ctx context.Context, kind models.MarkKind, userID, recipeID uint) error
	GetMarkedRecipeIDs(ctx context.Context, kind models.MarkKind, userID uint, recipeIDs []uint) (map[uint]bool, error)
}

// PostgresMarkRepository implements MarkRepository
type PostgresMarkRepository struct {
	db *gorm.DB
}

func NewPostgresMarkRepository(db *gorm.DB) *PostgresMarkRepository {
	return &PostgresMarkRepository{db: db}
}

// AddMark inserts the pair. A concurrent duplicate loses on the unique index
// and comes back as a ConflictError.
func (r *PostgresMarkRepository) AddMark(ctx context.Context, kind models.MarkKind, userID, recipeID uint) error {
	mark := &models.Mark{UserID: userID, RecipeID: recipeID}
	err := r.db.WithContext(ctx).Table(kind.Table()).Create(mark).Error
	return apperrors.FromDB(err, "recipe", recipeID, kind.AlreadyAddedMessage())
}

func (r *PostgresMarkRepository) RemoveMark(ctx context.Context, kind models.MarkKind, userID, recipeID uint) error {
	res := r.db.WithContext(ctx).Table(kind.Table()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Mark{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotPresent(kind.NotPresentMessage())
	}
	return nil
}

func (r *PostgresMarkRepository) GetMarkedRecipeIDs(ctx context.Context, kind models.MarkKind, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if userID == 0 || len(recipeIDs) == 0 {
		return result, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Table(kind.Table()).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
