package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/testdb"
	"gorm.io/gorm"
)

func TestCreateRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testdb.User(t, f.db, 1, "alice")
	eggs := testdb.Ingredient(t, f.db, "eggs", "pcs")
	tag := testdb.Tag(t, f.db, "Breakfast", "#E26C2D", "breakfast")

	view, err := f.recipes.CreateRecipe(ctx, alice.ID, writeRequest([]uint{tag.ID}, models.IngredientAmount{ID: eggs.ID, Amount: 3}))
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}
	if view.Author.ID != alice.ID || view.Name != "Omelette" || view.CookingTime != 10 {
		t.Errorf("unexpected view: %+v", view)
	}
	if len(view.Ingredients) != 1 || view.Ingredients[0].Name != "eggs" || view.Ingredients[0].Amount != 3 {
		t.Errorf("unexpected ingredients: %+v", view.Ingredients)
	}
	if view.IsFavorited || view.IsInShoppingCart {
		t.Error("a new recipe is neither favorited nor in the cart")
	}
	if f.images.count() != 1 {
		t.Errorf("expected one stored image, got %d", f.images.count())
	}
}

func TestCreateRecipeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testdb.User(t, f.db, 1, "alice")
	eggs := testdb.Ingredient(t, f.db, "eggs", "pcs")
	tag := testdb.Tag(t, f.db, "Breakfast", "#E26C2D", "breakfast")

	tests := []struct {
		name  string
		req   func() *models.RecipeWriteRequest
		field string
	}{
		{"empty ingredients", func() *models.RecipeWriteRequest {
			return writeRequest([]uint{tag.ID})
		}, "ingredients"},
		{"duplicate ingredient", func() *models.RecipeWriteRequest {
			return writeRequest([]uint{tag.ID}, models.IngredientAmount{ID: eggs.ID, Amount: 1}, models.IngredientAmount{ID: eggs.ID, Amount: 2})
		}, "ingredients"},
		{"unknown ingredient", func() *models.RecipeWriteRequest {
			return writeRequest([]uint{tag.ID}, models.IngredientAmount{ID: 999, Amount: 1})
		}, "ingredients"},
		{"zero amount", func() *models.RecipeWriteRequest {
			return writeRequest([]uint{tag.ID}, models.IngredientAmount{ID: eggs.ID, Amount: 0})
		}, "ingredients[0].amount"},
		{"amount above cap", func() *models.RecipeWriteRequest {
			return writeRequest([]uint{tag.ID}, models.IngredientAmount{ID: eggs.ID, Amount: models.MaxAmount + 1})
		}, "ingredients[0].amount"},
		{"empty tags", func() *models.RecipeWriteRequest {
			return writeRequest([]uint{}, models.IngredientAmount{ID: eggs.ID, Amount: 1})
		}, "tags"},
		{"duplicate tag", func() *models.RecipeWriteRequest {
			return writeRequest([]uint{tag.ID, tag.ID}, models.IngredientAmount{ID: eggs.ID, Amount: 1})
		}, "tags"},
		{"unknown tag", func() *models.RecipeWriteRequest {
			return writeRequest([]uint{999}, models.IngredientAmount{ID: eggs.ID, Amount: 1})
		}, "tags"},
		{"cooking time too small", func() *models.RecipeWriteRequest {
			r := writeRequest([]uint{tag.ID}, models.IngredientAmount{ID: eggs.ID, Amount: 1})
			r.CookingTime = ptr(0)
			return r
		}, "cooking_time"},
		{"cooking time too large", func() *models.RecipeWriteRequest {
			r := writeRequest([]uint{tag.ID}, models.IngredientAmount{ID: eggs.ID, Amount: 1})
			r.CookingTime = ptr(201)
			return r
		}, "cooking_time"},
		{"missing image", func() *models.RecipeWriteRequest {
			r := writeRequest([]uint{tag.ID}, models.IngredientAmount{ID: eggs.ID, Amount: 1})
			r.Image = nil
			return r
		}, "image"},
		{"not an image", func() *models.RecipeWriteRequest {
			r := writeRequest([]uint{tag.ID}, models.IngredientAmount{ID: eggs.ID, Amount: 1})
			r.Image = ptr("data:image/png;base64,aGVsbG8gd29ybGQ=")
			return r
		}, "image"},
		{"blank name", func() *models.RecipeWriteRequest {
			r := writeRequest([]uint{tag.ID}, models.IngredientAmount{ID: eggs.ID, Amount: 1})
			r.Name = ptr("   ")
			return r
		}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.recipes.CreateRecipe(ctx, alice.ID, tt.req())
			var verr *apperrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("expected error on %q, got %v", tt.field, verr.Fields)
			}
		})
	}

	if n := testdb.Count(t, f.db, "recipes"); n != 0 {
		t.Errorf("invalid requests must not write, found %d recipes", n)
	}
	if f.images.count() != 0 {
		t.Errorf("invalid requests must not store images, found %d", f.images.count())
	}
}

func TestCreateRecipeIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testdb.User(t, f.db, 1, "alice")
	eggs := testdb.Ingredient(t, f.db, "eggs", "pcs")
	tag := testdb.Tag(t, f.db, "Breakfast", "#E26C2D", "breakfast")

	err := f.db.Callback().Create().Before("gorm:create").Register("test:fail_recipe_ingredients", func(tx *gorm.DB) {
		if tx.Statement.Table == "recipe_ingredients" {
			_ = tx.AddError(errInjected)
		}
	})
	if err != nil {
		t.Fatalf("Failed to register callback: %v", err)
	}

	_, err = f.recipes.CreateRecipe(ctx, alice.ID, writeRequest([]uint{tag.ID}, models.IngredientAmount{ID: eggs.ID, Amount: 2}))
	if err == nil {
		t.Fatal("expected injected failure")
	}

	for _, table := range []string{"recipes", "recipe_ingredients", "recipe_tags"} {
		if n := testdb.Count(t, f.db, table); n != 0 {
			t.Errorf("expected no rows in %s after a failed create, got %d", table, n)
		}
	}
	if f.images.count() != 0 {
		t.Errorf("expected the stored image to be discarded, found %d", f.images.count())
	}
}

func TestUpdateRecipePatchSemantics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testdb.User(t, f.db, 1, "alice")
	eggs := testdb.Ingredient(t, f.db, "eggs", "pcs")
	milk := testdb.Ingredient(t, f.db, "milk", "ml")
	tag := testdb.Tag(t, f.db, "Breakfast", "#E26C2D", "breakfast")

	created, err := f.recipes.CreateRecipe(ctx, alice.ID, writeRequest([]uint{tag.ID}, models.IngredientAmount{ID: eggs.ID, Amount: 2}))
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	// omitting tags keeps them
	updated, err := f.recipes.UpdateRecipe(ctx, alice.ID, created.ID, &models.RecipeWriteRequest{
		Name:        ptr("Milky omelette"),
		Ingredients: &[]models.IngredientAmount{{ID: milk.ID, Amount: 100}},
	})
	if err != nil {
		t.Fatalf("UpdateRecipe failed: %v", err)
	}
	if updated.Name != "Milky omelette" || len(updated.Tags) != 1 {
		t.Errorf("expected name change with tags kept, got %+v", updated)
	}
	if len(updated.Ingredients) != 1 || updated.Ingredients[0].ID != milk.ID {
		t.Errorf("expected ingredients replaced, got %+v", updated.Ingredients)
	}
	if updated.Image != created.Image {
		t.Error("omitting image must keep the old one")
	}

	// an explicit empty tag list is rejected
	_, err = f.recipes.UpdateRecipe(ctx, alice.ID, created.ID, &models.RecipeWriteRequest{Tags: &[]uint{}})
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected ValidationError for tags: [], got %v", err)
	}

	// replacing the image drops the old file
	updated, err = f.recipes.UpdateRecipe(ctx, alice.ID, created.ID, &models.RecipeWriteRequest{Image: ptr(pngDataURI)})
	if err != nil {
		t.Fatalf("UpdateRecipe failed: %v", err)
	}
	if updated.Image == created.Image || f.images.count() != 1 {
		t.Errorf("expected a single new image, got %q (%d stored)", updated.Image, f.images.count())
	}
}

func TestOnlyAuthorMayChangeRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testdb.User(t, f.db, 1, "alice")
	bob := testdb.User(t, f.db, 2, "bob")
	recipe := testdb.Recipe(t, f.db, alice.ID, "soup", nil)

	_, err := f.recipes.UpdateRecipe(ctx, bob.ID, recipe.ID, &models.RecipeWriteRequest{Name: ptr("mine now")})
	if !apperrors.IsPermission(err) {
		t.Errorf("expected PermissionError on update, got %v", err)
	}
	if err := f.recipes.DeleteRecipe(ctx, bob.ID, recipe.ID); !apperrors.IsPermission(err) {
		t.Errorf("expected PermissionError on delete, got %v", err)
	}
	if err := f.recipes.DeleteRecipe(ctx, alice.ID, recipe.ID); err != nil {
		t.Errorf("author delete failed: %v", err)
	}
	if _, err := f.recipes.GetRecipe(ctx, alice.ID, recipe.ID); !apperrors.IsNotFound(err) {
		t.Errorf("expected NotFoundError after delete, got %v", err)
	}
}

func TestRecipeViewIsViewerRelative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testdb.User(t, f.db, 1, "alice")
	bob := testdb.User(t, f.db, 2, "bob")
	recipe := testdb.Recipe(t, f.db, alice.ID, "soup", nil)

	if _, err := f.memberships.Add(ctx, models.MarkFavorite, bob.ID, recipe.ID); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := f.subscriptions.Follow(ctx, bob.ID, alice.ID, 0); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	asBob, err := f.recipes.GetRecipe(ctx, bob.ID, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipe failed: %v", err)
	}
	if !asBob.IsFavorited || asBob.IsInShoppingCart || !asBob.Author.IsSubscribed {
		t.Errorf("unexpected flags for bob: %+v", asBob)
	}

	anon, err := f.recipes.GetRecipe(ctx, 0, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipe failed: %v", err)
	}
	if anon.IsFavorited || anon.Author.IsSubscribed {
		t.Errorf("anonymous view must have all flags false: %+v", anon)
	}
}
