package router

import (
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/mglush/krug/backend/internal/handlers"
	"github.com/mglush/krug/backend/internal/middleware"
	"github.com/mglush/krug/backend/internal/models"
	"github.com/mglush/krug/backend/internal/repositories"
	"github.com/mglush/krug/backend/internal/services"
	"github.com/mglush/krug/backend/pkg/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, logger *zap.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
}

// SetupRoutes configures all application routes and injects dependencies.
// blobStorage may be nil when avatar uploads are not configured.
func SetupRoutes(e *echo.Echo, db *gorm.DB, blobStorage storage.BlobStorage, jwtSecret string, logger *zap.Logger) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Notification{},
	)
	if err != nil {
		return err
	}
	logger.Info("auto-migrations completed for all models")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Repositories and services ---
	userRepo := repositories.NewPostgresUserRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)

	socialGraph := services.NewSocialGraphService(db)
	content := services.NewContentService(db)
	engagement := services.NewEngagementService(db)
	notifications := services.NewNotificationService(db)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, jwtSecret)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(jwtSecret))

	userHandler := handlers.NewUserHandler(userRepo, socialGraph, blobStorage)
	userHandler.RegisterProfileRoutes(api)

	postHandler := handlers.NewPostHandler(content, userRepo)
	postHandler.RegisterPostRoutes(api)

	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, socialGraph, engagement)
	feedHandler.RegisterFeedRoutes(api)

	followHandler := handlers.NewFollowHandler(socialGraph, userRepo)
	followHandler.RegisterFollowRoutes(api)

	commentHandler := handlers.NewCommentHandler(content, engagement)
	commentHandler.RegisterCommentRoutes(api)

	likeHandler := handlers.NewLikeHandler(engagement)
	likeHandler.RegisterLikeRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notifications, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	searchHandler := handlers.NewSearchHandler(userRepo, content)
	searchHandler.RegisterSearchRoutes(api)

	logger.Info("all routes configured")
	return nil
}
