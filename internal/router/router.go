package router

import (
	"fmt"

	"github.com/anonto42/foodgram/backend/internal/handlers"
	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/anonto42/foodgram/backend/internal/middleware"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/render"
	"github.com/anonto42/foodgram/backend/internal/repositories"
	"github.com/anonto42/foodgram/backend/internal/services"
	"github.com/anonto42/foodgram/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	DB          *gorm.DB
	Images      storage.ImageStore
	Renderer    render.Renderer
	JWTSecret   string
	PageSize    int
	MaxPageSize int
	// MediaRoot and MediaURL expose locally stored images; empty disables.
	MediaRoot string
	MediaURL  string
}

// Migrate creates or updates every table the API uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) error {
	if err := Migrate(deps.DB); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logging.Info().Msg("database auto-migrations completed")

	health := handlers.NewHealthHandler(deps.DB)
	e.GET("/health", health.HealthCheck)
	if deps.MediaRoot != "" && deps.MediaURL != "" {
		e.Static(deps.MediaURL, deps.MediaRoot)
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.DB)
	recipeRepo := repositories.NewPostgresRecipeRepository(deps.DB)
	tagRepo := repositories.NewTagRepository(deps.DB)
	ingredientRepo := repositories.NewIngredientRepository(deps.DB)
	markRepo := repositories.NewPostgresMarkRepository(deps.DB)
	subscriptionRepo := repositories.NewPostgresSubscriptionRepository(deps.DB)
	shoppingListRepo := repositories.NewPostgresShoppingListRepository(deps.DB)

	// --- Services ---
	userService := services.NewUserService(userRepo, subscriptionRepo)
	recipeService := services.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, markRepo, subscriptionRepo, deps.Images)
	membershipService := services.NewMembershipService(recipeRepo, markRepo)
	shoppingListService := services.NewShoppingListService(shoppingListRepo, deps.Renderer)
	subscriptionService := services.NewSubscriptionService(userRepo, subscriptionRepo, recipeRepo)

	paginator := handlers.NewPaginator(deps.PageSize, deps.MaxPageSize)

	// Tokens are verified when present; handlers reject anonymous writes.
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(deps.JWTSecret, userService))

	handlers.NewRecipeHandler(recipeService, shoppingListService, paginator).RegisterRecipeRoutes(api)
	handlers.NewMembershipHandler(membershipService).RegisterMembershipRoutes(api)
	handlers.NewCatalogHandler[models.Tag](tagRepo, "").RegisterCatalogRoutes(api, "/tags")
	handlers.NewCatalogHandler[models.Ingredient](ingredientRepo, "name").RegisterCatalogRoutes(api, "/ingredients")
	handlers.NewUserHandler(userService, paginator).RegisterUserRoutes(api)
	handlers.NewSubscriptionHandler(subscriptionService, paginator).RegisterSubscriptionRoutes(api)

	logging.Info().Int("routes", len(e.Routes())).Msg("routes configured")
	return nil
}
