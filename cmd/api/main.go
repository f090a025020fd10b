package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jmoreau/nutritrack/config"
	"github.com/jmoreau/nutritrack/internal/api"
	"github.com/jmoreau/nutritrack/internal/cache"
	"github.com/jmoreau/nutritrack/internal/database"
	"github.com/jmoreau/nutritrack/internal/middleware"
	"github.com/jmoreau/nutritrack/internal/router"
	"github.com/jmoreau/nutritrack/internal/server"
	"github.com/jmoreau/nutritrack/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}

	ctx := context.Background()
	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize object storage", zap.Error(err))
	}

	queryCache := cache.New(cache.NewRedisStore(redisClient))

	authService := service.NewAuthService(db, cfg.JWTSecret)
	alimentService := service.NewAlimentService(db)
	recipeService := service.NewRecipeService(db)
	preferenceService := service.NewPreferenceService(db)
	profileService := service.NewProfileService(db)
	pathologyService := service.NewPathologyService(db)
	storageService := service.NewStorageService(s3Config)

	handlers := router.Handlers{
		Auth:        api.NewAuthHandler(authService),
		Aliments:    api.NewAlimentHandler(alimentService, queryCache),
		Recipes:     api.NewRecipeHandler(recipeService),
		Preferences: api.NewPreferenceHandler(preferenceService),
		Profiles:    api.NewProfileHandler(profileService, storageService),
		Pathologies: api.NewPathologyHandler(pathologyService),
	}

	engine := router.SetupRouter(
		handlers,
		authService,
		middleware.NewMutationRateLimiter(redisClient),
		logger,
		cfg.AllowedOrigins,
	)

	srv := server.New(cfg.Addr(), engine, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Fatal("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
