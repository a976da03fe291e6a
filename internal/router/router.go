package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tastebook/backend/internal/api"
	"github.com/tastebook/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	authHandler *api.AuthHandler,
	recipeHandler *api.RecipeHandler,
	catalogHandler *api.CatalogHandler,
	userHandler *api.UserHandler,
	rateLimiter *middleware.RateLimiter,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS())
	if rateLimiter != nil {
		router.Use(rateLimiter.RateLimitMiddleware())
	}

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)
	recipeHandler.RegisterRoutes(v1)
	catalogHandler.RegisterRoutes(v1)
	userHandler.RegisterRoutes(v1)

	return router
}
