package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tastebook/backend/config"
	"github.com/tastebook/backend/internal/api"
	"github.com/tastebook/backend/internal/database"
	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/router"
	"github.com/tastebook/backend/internal/server"
	"github.com/tastebook/backend/internal/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.RunMigrations(db, "migrations", logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// The API stays up without redis; it only loses rate limiting.
	var rateLimiter *middleware.RateLimiter
	if redisClient, err := database.NewRedisClient(cfg, logger); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
	} else {
		rateLimiter = middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Window:    time.Minute,
			Limit:     120,
			KeyPrefix: "ratelimit",
		})
	}

	// Without S3, inline image payloads are rejected but URL references work.
	var imageStore service.ImageStore
	if s3Config, err := config.NewS3Config(context.Background()); err != nil {
		logger.Warn("s3 unavailable, inline image upload disabled", zap.Error(err))
	} else {
		imageStore = service.NewImageService(s3Config, logger)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, logger)
	recipeService := service.NewRecipeService(db, logger)
	membershipService := service.NewMembershipService(db, logger)
	shoppingListService := service.NewShoppingListService(db)
	catalogService := service.NewCatalogService(db)
	subscriptionService := service.NewSubscriptionService(db, logger)

	engine := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewRecipeHandler(recipeService, membershipService, shoppingListService, imageStore, authService),
		api.NewCatalogHandler(catalogService, authService),
		api.NewUserHandler(subscriptionService, authService),
		rateLimiter,
		logger,
	)

	srv := server.NewServer(engine, logger)
	if err := srv.Start(cfg.ServerPort); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
