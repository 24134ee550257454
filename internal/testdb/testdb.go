// Package testdb opens migrated in-memory databases and seeds fixtures for tests.
package testdb

import (
	"testing"

	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a fresh in-memory SQLite database with every table migrated.
// The pool is pinned to one connection because each SQLite in-memory
// connection is its own database.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// User inserts a user with the given id.
func User(t testing.TB, db *gorm.DB, id uint, username string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Username: username, Email: username + "@example.com", FirstName: username}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return u
}

// Tag inserts a tag.
func Tag(t testing.TB, db *gorm.DB, name, color, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Color: color, Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("Failed to create tag %s: %v", name, err)
	}
	return tag
}

// Ingredient inserts a catalog ingredient.
func Ingredient(t testing.TB, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ing).Error; err != nil {
		t.Fatalf("Failed to create ingredient %s: %v", name, err)
	}
	return ing
}

// Recipe inserts a recipe row with its ingredient amounts and tags.
func Recipe(t testing.TB, db *gorm.DB, authorID uint, name string, amounts map[uint]int, tags ...models.Tag) *models.Recipe {
	t.Helper()
	r := &models.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Image:       "/media/recipes/images/" + name + ".png",
		Text:        "Cook " + name,
		CookingTime: 10,
		Tags:        tags,
	}
	for ingredientID, amount := range amounts {
		r.Ingredients = append(r.Ingredients, models.RecipeIngredient{IngredientID: ingredientID, Amount: amount})
	}
	if err := db.Omit("Author", "Tags.*").Create(r).Error; err != nil {
		t.Fatalf("Failed to create recipe %s: %v", name, err)
	}
	return r
}

// Count returns the number of rows in table.
func Count(t testing.TB, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	if err := db.Table(table).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}
