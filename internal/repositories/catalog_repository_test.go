package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/testdb"
)

func TestIngredientNameUnitIsUnique(t *testing.T) {
	db := testdb.New(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &models.Ingredient{Name: "flour", MeasurementUnit: "g"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	err := repo.Create(ctx, &models.Ingredient{Name: "flour", MeasurementUnit: "g"})
	if !apperrors.IsConflict(err) {
		t.Fatalf("expected ConflictError for duplicate (name, unit), got %v", err)
	}
	if err := repo.Create(ctx, &models.Ingredient{Name: "flour", MeasurementUnit: "cup"}); err != nil {
		t.Fatalf("same name with another unit should be allowed: %v", err)
	}
	if n := testdb.Count(t, db, "ingredients"); n != 2 {
		t.Errorf("expected 2 ingredients, got %d", n)
	}
}

func TestIngredientPrefixSearch(t *testing.T) {
	db := testdb.New(t)
	repo := NewIngredientRepository(db)
	testdb.Ingredient(t, db, "Sugar", "g")
	testdb.Ingredient(t, db, "salt", "g")
	testdb.Ingredient(t, db, "brown sugar", "g")
	testdb.Ingredient(t, db, "100%_juice", "ml")

	items, err := repo.List(context.Background(), "su")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Sugar" {
		t.Errorf("expected only Sugar for prefix 'su', got %+v", items)
	}

	items, err = repo.List(context.Background(), "100%")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected wildcard characters to match literally, got %+v", items)
	}

	all, err := repo.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 ingredients, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Name > all[i].Name {
			t.Errorf("ingredients not ordered by name: %q before %q", all[i-1].Name, all[i].Name)
		}
	}
}

func TestTagGetAndGetByIDs(t *testing.T) {
	db := testdb.New(t)
	repo := NewTagRepository(db)
	breakfast := testdb.Tag(t, db, "Breakfast", "#E26C2D", "breakfast")
	testdb.Tag(t, db, "Dinner", "#49B64E", "dinner")

	got, err := repo.Get(context.Background(), breakfast.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Slug != "breakfast" {
		t.Errorf("expected slug breakfast, got %q", got.Slug)
	}

	if _, err := repo.Get(context.Background(), 999); !apperrors.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}

	found, err := repo.GetByIDs(context.Background(), []uint{breakfast.ID, 999})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("expected 1 existing tag, got %d", len(found))
	}
}
