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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/edunite/exam-result-service/internal/cache"
	"github.com/edunite/exam-result-service/internal/config"
	"github.com/edunite/exam-result-service/internal/handlers"
	"github.com/edunite/exam-result-service/internal/repositories/casdoor"
	"github.com/edunite/exam-result-service/internal/repositories/postgres"
	"github.com/edunite/exam-result-service/internal/services"
	"github.com/edunite/exam-result-service/internal/utils"
	"github.com/edunite/exam-result-service/internal/validator"
	"github.com/edunite/exam-result-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel, cfg.Environment)
	slogLogger := utils.ToSlogLogger(logger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis. The service degrades to uncached reads without it.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Failed to initialize Redis, running without cache", "error", err)
			redisClient = nil
		}
	}

	// Initialize repositories
	repoConfig := postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		CasdoorConfig: casdoor.CasdoorConfig{
			Endpoint:         cfg.Casdoor.Endpoint,
			ClientID:         cfg.Casdoor.ClientID,
			ClientSecret:     cfg.Casdoor.ClientSecret,
			Certificate:      cfg.Casdoor.Certificate,
			OrganizationName: cfg.Casdoor.OrganizationName,
			ApplicationName:  cfg.Casdoor.ApplicationName,
		},
	}
	repoManager := postgres.NewRepositoryManager(repoConfig)
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	repo := repoManager.GetRepository()

	// Initialize cache manager
	cacheManager := cache.NewCacheManager(redisClient)

	// Initialize event publisher
	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		log.Fatalf("Failed to create event publisher: %v", err)
	}

	// Initialize validator
	v := validator.New()

	// Initialize services
	statisticsService := services.NewStatisticsService(repo, cacheManager, slogLogger)
	attemptService := services.NewAttemptService(repo, statisticsService, publisher, cacheManager, slogLogger, v)
	reportService := services.NewReportService(repo, publisher, slogLogger, v)
	exportService := services.NewExportService(repo, slogLogger)

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(
		attemptService,
		statisticsService,
		reportService,
		exportService,
		repo,
		cacheManager,
		logger,
	)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := publisher.Close(); err != nil {
		log.Printf("Failed to close event publisher: %v", err)
	}

	if err := repoManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown repositories: %v", err)
	}

	logger.Info("Server exited")
}
