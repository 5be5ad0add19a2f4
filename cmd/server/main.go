package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/mglush/krug/backend/internal/router"
	"github.com/mglush/krug/backend/pkg/config"
	"github.com/mglush/krug/backend/pkg/storage"
	"github.com/mglush/krug/backend/validators"
	"go.uber.org/zap"
)

func main() {
	// Initialize database connection (loads .env first)
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Blob storage for avatars; optional
	var blobStorage storage.BlobStorage
	if cfg.AWSBucket != "" {
		s3Storage, err := storage.NewS3Storage(context.Background(), cfg.AWSBucket, cfg.AWSRegion)
		if err != nil {
			logger.Fatal("failed to initialize S3 storage", zap.Error(err))
		}
		blobStorage = s3Storage
	} else {
		logger.Warn("AWS_BUCKET_NAME not set, avatar uploads disabled")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, logger)
	if err := router.SetupRoutes(e, db.Postgres, blobStorage, cfg.JWTSecret, logger); err != nil {
		logger.Fatal("failed to set up routes", zap.Error(err))
	}

	logger.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
