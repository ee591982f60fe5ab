package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopReco/app/echo-server/router"
	"shopReco/business/product"
	"shopReco/business/recommendation"
	"shopReco/business/tracking"
	"shopReco/internal/middleware"
	psqlRepo "shopReco/internal/repository/postgres"
	redisRepo "shopReco/internal/repository/redis"
	"shopReco/internal/rest"
	"shopReco/pkg/config"
	"shopReco/pkg/database"
	redisdb "shopReco/pkg/database/redis"
	"shopReco/pkg/logger"
	"shopReco/pkg/metrics"

	jsonres "shopReco/pkg/response"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting shopReco", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Auth middleware, backed by the token store when Redis is configured
	authRequired := middleware.AuthMiddleware()
	if cfg.Redis.Enabled() {
		redisClient, err := redisdb.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		defer redisdb.CloseRedisClient(redisClient)

		authRequired = middleware.AuthMiddlewareWithRedis(redisRepo.NewTokenRepository(redisClient))
		logger.Info("Redis token validation enabled")
	}

	candidates, err := recommendation.NewProductCandidates(cfg.Recommendation.CandidateSource)
	if err != nil {
		logger.Fatal("Invalid candidate source", "error", err)
	}

	// Init repo
	productRepo := psqlRepo.NewProductRepository(db)
	viewRepo := psqlRepo.NewViewRepository(db)
	userRepo := psqlRepo.NewUserRepository(db)

	// Init service
	productService := product.NewProductService(productRepo)
	trackingService := tracking.NewTrackingService(viewRepo, productRepo)
	recoService := recommendation.NewService(productRepo, viewRepo, userRepo, candidates, recommendationConfig(cfg))

	// Init handler
	timeout := cfg.Server.RequestTimeout
	productHandler := rest.NewProductHandler(productService, timeout)
	trackingHandler := rest.NewTrackingHandler(trackingService, timeout)
	recoHandler := rest.NewRecommendationHandler(recoService, timeout)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.JSONSerializer = jsonres.JSONSerializer{}

	// Global middleware
	metrics.Init()
	e.Use(echomiddleware.Recover())
	e.Use(middleware.Trace())
	e.Use(metrics.Middleware())
	e.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.HeaderRequestID},
	}))

	// Setup routes
	router.SetOpsRoutes(e)
	api := e.Group("/api/v1")
	router.SetupProductRoutes(api, productHandler, recoHandler)
	router.SetRecommendationRoutes(api, recoHandler, authRequired)
	router.SetTrackingRoutes(api, trackingHandler, authRequired)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("Server stopped")
}

func recommendationConfig(cfg *config.Config) recommendation.Config {
	rc := cfg.Recommendation
	out := recommendation.DefaultConfig()
	out.RecentViews = rc.RecentViews
	out.NeighborThreshold = rc.NeighborThreshold
	out.MaxNeighbors = rc.MaxNeighbors
	out.SimilarThreshold = rc.SimilarThreshold
	out.PopularMinRating = rc.PopularMinRating
	out.FeaturedMinRating = rc.FeaturedMinRating
	out.ComputeTimeout = rc.ComputeTimeout
	out.BreakerFailures = uint32(rc.BreakerFailures)
	out.BreakerTimeout = rc.BreakerTimeout
	return out
}
