package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"travel-companion-system/handlers"
	"travel-companion-system/middleware"
	"travel-companion-system/models"
	"travel-companion-system/services"
	"travel-companion-system/utils"
	"travel-companion-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	logger := newLogger()
	defer logger.Sync()

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // visit photos, avatars
	})

	// 🔐❗ GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware(logger))

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		logger.Warn("ALLOWED_ORIGINS not set, defaulting to http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}
	allowedOrigins = strings.Join(origins, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token, X-User-ID, X-User-Roles, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		logger.Fatal("failed to initialize R2 client", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Continent{},
		&models.Country{},
		&models.City{},
		&models.Attraction{},
		&models.AttractionPhoto{},
		&models.Visit{},
		&models.Review{},
		&models.Favorite{},
		&models.SubscriptionEvent{},
	); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	if err := utils.EnsureUploadDir(); err != nil {
		logger.Fatal("failed to ensure upload dir", zap.Error(err))
	}

	cacheTTL := 5 * time.Minute
	if raw := os.Getenv("LEADERBOARD_CACHE_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			cacheTTL = parsed
		}
	}
	cache := services.NewLeaderboardCache(os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"), cacheTTL, logger)
	if cache == nil {
		logger.Warn("REDIS_ADDR not set, leaderboard snapshot cache disabled")
	}
	defer cache.Close()

	statsStore := services.NewStatsStore(db)
	rankingService := services.NewRankingService(statsStore, logger)
	badgeService := services.NewBadgeProgressService(statsStore, logger)
	attractionService := services.NewAttractionService(db, logger)
	locationService := services.NewLocationService(db, logger)
	reviewService := services.NewReviewService(db, logger)
	favoriteService := services.NewFavoriteService(db, logger)
	visitService := services.NewVisitService(db, cache, logger)
	userService := services.NewUserService(db, logger)
	subscriptionService := services.NewSubscriptionService(db, cache, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	billingURL := os.Getenv("BILLING_SERVICE_URL")
	serviceToken := os.Getenv("TRAVEL_SERVICE_TOKEN")
	if billingURL != "" {
		workers.NewSubscriptionSyncWorker(
			db, subscriptionService,
			billingURL, "/api/v1/internal/subscription-events", serviceToken,
			logger,
		).Start(ctx)
	} else {
		logger.Warn("BILLING_SERVICE_URL not set, subscription sync disabled")
	}

	verifierURL := os.Getenv("VERIFICATION_SERVICE_URL")
	if verifierURL != "" {
		workers.NewVerificationSyncWorker(visitService, verifierURL, serviceToken, logger).Start(ctx)
	} else {
		logger.Warn("VERIFICATION_SERVICE_URL not set, photo verification sync disabled")
	}

	scheduler, err := services.StartMaintenanceScheduler(subscriptionService, rankingService, cache, logger)
	if err != nil {
		logger.Fatal("failed to start maintenance scheduler", zap.Error(err))
	}

	// ✅ Routes — Gateway auth enforced globally, user context on /s/
	handlers.SetupAttractionRoutes(app, attractionService, locationService, reviewService, favoriteService, logger)
	handlers.SetupVisitRoutes(app, visitService, logger)
	handlers.SetupGamificationRoutes(app, rankingService, badgeService, cache, logger)
	handlers.SetupProfileRoutes(app, userService, subscriptionService, logger)

	app.Static("/uploads", "./uploads")

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	logger.Info("✅ travel companion service running", zap.String("port", port))

	<-ctx.Done()
	logger.Info("shutting down")

	if err := scheduler.Shutdown(); err != nil {
		logger.Warn("scheduler shutdown failed", zap.Error(err))
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("server shutdown failed", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if os.Getenv("APP_ENV") == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	return logger
}
