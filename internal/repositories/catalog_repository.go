package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// CatalogEntity is reference data served read-only over the API.
type CatalogEntity interface {
	models.Tag | models.Ingredient
}

// CatalogRepository reads (and, for seeding, writes) one kind of reference data.
type CatalogRepository[T CatalogEntity] interface {
	List(ctx context.Context, search string) ([]T, error)
	Get(ctx context.Context, id uint) (*T, error)
	GetByIDs(ctx context.Context, ids []uint) ([]T, error)
	Create(ctx context.Context, item *T) error
}

// PostgresCatalogRepository implements CatalogRepository. searchColumn, when
// set, enables case-insensitive prefix search on that column.
type PostgresCatalogRepository[T CatalogEntity] struct {
	db           *gorm.DB
	resource     string
	searchColumn string
}

func NewTagRepository(db *gorm.DB) *PostgresCatalogRepository[models.Tag] {
	return &PostgresCatalogRepository[models.Tag]{db: db, resource: "tag"}
}

func NewIngredientRepository(db *gorm.DB) *PostgresCatalogRepository[models.Ingredient] {
	return &PostgresCatalogRepository[models.Ingredient]{db: db, resource: "ingredient", searchColumn: "name"}
}

func (r *PostgresCatalogRepository[T]) List(ctx context.Context, search string) ([]T, error) {
	var items []T
	q := r.db.WithContext(ctx).Order("name").Order("id")
	if search = strings.TrimSpace(search); search != "" && r.searchColumn != "" {
		q = q.Where("LOWER("+r.searchColumn+") LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(search))+"%")
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresCatalogRepository[T]) Get(ctx context.Context, id uint) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, apperrors.FromDB(err, r.resource, id, "")
	}
	return &item, nil
}

// GetByIDs returns the rows that exist among ids, in no particular order
func (r *PostgresCatalogRepository[T]) GetByIDs(ctx context.Context, ids []uint) ([]T, error) {
	var items []T
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *PostgresCatalogRepository[T]) Create(ctx context.Context, item *T) error {
	err := r.db.WithContext(ctx).Create(item).Error
	return apperrors.FromDB(err, r.resource, "", "A "+r.resource+" with these values already exists.")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
