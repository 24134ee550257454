package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/render"
	"github.com/anonto42/foodgram/backend/internal/repositories"
	"github.com/anonto42/foodgram/backend/internal/testdb"
	"gorm.io/gorm"
)

// 1x1 transparent PNG
const pngDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// memoryImages is an ImageStore that keeps images in a map.
type memoryImages struct {
	mu     sync.Mutex
	next   int
	stored map[string][]byte
}

func newMemoryImages() *memoryImages {
	return &memoryImages{stored: make(map[string][]byte)}
}

func (m *memoryImages) Save(_ context.Context, data []byte, ext string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	ref := "/media/recipes/images/" + string(rune('a'+m.next)) + ext
	m.stored[ref] = data
	return ref, nil
}

func (m *memoryImages) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stored, ref)
	return nil
}

func (m *memoryImages) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stored)
}

type fixture struct {
	db            *gorm.DB
	images        *memoryImages
	recipes       *RecipeService
	memberships   *MembershipService
	subscriptions *SubscriptionService
	shopping      *ShoppingListService
	users         *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	images := newMemoryImages()

	userRepo := repositories.NewPostgresUserRepository(db)
	recipeRepo := repositories.NewPostgresRecipeRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	ingredientRepo := repositories.NewIngredientRepository(db)
	markRepo := repositories.NewPostgresMarkRepository(db)
	subRepo := repositories.NewPostgresSubscriptionRepository(db)

	return &fixture{
		db:            db,
		images:        images,
		recipes:       NewRecipeService(recipeRepo, tagRepo, ingredientRepo, markRepo, subRepo, images),
		memberships:   NewMembershipService(recipeRepo, markRepo),
		subscriptions: NewSubscriptionService(userRepo, subRepo, recipeRepo),
		shopping:      NewShoppingListService(repositories.NewPostgresShoppingListRepository(db), render.NewTextRenderer()),
		users:         NewUserService(userRepo, subRepo),
	}
}

func ptr[T any](v T) *T { return &v }

func writeRequest(tagIDs []uint, lines ...models.IngredientAmount) *models.RecipeWriteRequest {
	return &models.RecipeWriteRequest{
		Ingredients: &lines,
		Tags:        &tagIDs,
		Image:       ptr(pngDataURI),
		Name:        ptr("Omelette"),
		Text:        ptr("Beat the eggs."),
		CookingTime: ptr(10),
	}
}

var errInjected = errors.New("injected failure")
