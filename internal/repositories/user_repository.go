package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	EnsureUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUsers(ctx context.Context, page models.Page) (models.PageResult[models.User], error)
}

// PostgresUserRepository implements UserRepository on top of gorm
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// EnsureUser inserts the user if no row with its ID exists yet. Missing
// username/email are derived from the ID so the unique columns stay filled.
func (r *PostgresUserRepository) EnsureUser(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		return apperrors.Invalid("token does not identify a user")
	}
	if user.Username == "" {
		user.Username = fmt.Sprintf("user%d", user.ID)
	}
	if user.Email == "" {
		user.Email = fmt.Sprintf("user%d@users.invalid", user.ID)
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(user).Error
	return apperrors.FromDB(err, "user", user.ID, "A user with this email or username already exists.")
}

// GetUserByID retrieves a user by ID
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, apperrors.FromDB(err, "user", id, "")
	}
	return &user, nil
}

// GetUsers returns one page of users ordered by id
func (r *PostgresUserRepository) GetUsers(ctx context.Context, page models.Page) (models.PageResult[models.User], error) {
	var result models.PageResult[models.User]
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.User{}).Count(&result.Count).Error; err != nil {
		return result, err
	}
	err := db.Order("id").Offset(page.Offset()).Limit(page.Size).Find(&result.Items).Error
	return result, err
}
