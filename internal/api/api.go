package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"recipebook/config"
	"recipebook/internal/middleware"
	"recipebook/internal/service"
)

// SetupAPI wires services and handlers onto /api. redisClient and images
// may be nil; rate limiting and inline image upload are then disabled.
func SetupAPI(router *gin.Engine, db *gorm.DB, cfg *config.Config, redisClient *redis.Client, images service.ImageStore) {
	v1 := router.Group("/api")
	{
		authService := service.NewAuthService(db, cfg.JWTSecret)
		interactions := service.NewInteractionService(db, cfg.DuplicateAddNoop)
		recipeService := service.NewRecipeService(db, images)
		shoppingList := service.NewShoppingListService(db)

		var createLimiter *middleware.RateLimiter
		if redisClient != nil {
			createLimiter = middleware.NewRecipeCreationRateLimiter(redisClient)
		}

		authHandler := NewAuthHandler(authService)
		userHandler := NewUserHandler(db, authService, interactions, recipeService)
		tagHandler := NewTagHandler(db)
		ingredientHandler := NewIngredientHandler(db)
		recipeHandler := NewRecipeHandler(recipeService, interactions, shoppingList, authService, createLimiter)

		authHandler.RegisterRoutes(v1)
		userHandler.RegisterRoutes(v1)
		tagHandler.RegisterRoutes(v1)
		ingredientHandler.RegisterRoutes(v1)
		recipeHandler.RegisterRoutes(v1)
	}
}
