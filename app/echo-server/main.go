package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"campusEvents/app/echo-server/router"
	"campusEvents/business/botusers"
	"campusEvents/business/clustering"
	"campusEvents/business/events"
	"campusEvents/business/favorites"
	"campusEvents/business/feedback"
	"campusEvents/business/ingest"
	"campusEvents/business/maintenance"
	"campusEvents/business/recommend"
	"campusEvents/business/students"
	"campusEvents/internal/middleware"
	"campusEvents/internal/repository/embedding"
	psqlRepo "campusEvents/internal/repository/postgres"
	redisRepo "campusEvents/internal/repository/redis"
	"campusEvents/internal/rest"
	"campusEvents/pkg/config"
	"campusEvents/pkg/database"
	redisDB "campusEvents/pkg/database/redis"
	"campusEvents/pkg/logger"
	"campusEvents/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Campus Events API", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisDB.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}

	logger.Info("Redis connected successfully")

	// Init embedding client
	embedder := embedding.NewEmbeddingRepository(embedding.EmbeddingConfig{
		BaseURL:   cfg.Embedding.BaseURL,
		APIKey:    cfg.Embedding.APIKey,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
	})

	// Init repo
	studentRepo := psqlRepo.NewStudentRepository(db)
	eventRepo := psqlRepo.NewEventRepository(db)
	clusterRepo := psqlRepo.NewClusterRepository(db)
	directionRepo := psqlRepo.NewDirectionRepository(db)
	recommendationRepo := psqlRepo.NewRecommendationRepository(db)
	favoriteRepo := psqlRepo.NewFavoriteRepository(db)
	botUserRepo := psqlRepo.NewBotUserRepository(db)
	feedbackRepo := psqlRepo.NewFeedbackRepository(db)
	maintenanceRunRepo := psqlRepo.NewMaintenanceRunRepository(db)
	resetRepo := psqlRepo.NewResetRepository(db)

	locker := redisRepo.NewLocker(redisClient, time.Duration(cfg.Recommend.LockTTLSecs)*time.Second)
	cache := redisRepo.NewRecommendationCache(redisClient, time.Duration(cfg.Recommend.CacheTTLSecs)*time.Second)

	// Init service
	clusterService := clustering.NewClusterService(clusterRepo, directionRepo, clusterRepo, embedder, cfg.Cluster.SimilarityThreshold)
	recommendService := recommend.NewRecommendService(studentRepo, eventRepo, recommendationRepo, locker, cache, cfg.Recommend.BatchSize)
	eventService := events.NewEventService(eventRepo)
	studentService := students.NewStudentService(studentRepo)
	favoriteService := favorites.NewFavoriteService(favoriteRepo, eventRepo)
	botUserService := botusers.NewBotUserService(botUserRepo, studentRepo)
	feedbackService := feedback.NewFeedbackService(feedbackRepo, studentRepo)

	// Init ingest pipelines
	eventPipeline := ingest.NewEventPipeline(embedder)
	eventLoader := ingest.NewEventLoader(eventRepo, clusterRepo, clusterService)
	studentPipeline := ingest.NewStudentPipeline(embedder, cfg.Ingest.TargetInstitution)
	studentLoader := ingest.NewStudentLoader(studentRepo, directionRepo, cfg.Ingest.DefaultInstitution, 100)
	directionPreprocessor := ingest.NewDirectionPreprocessor(cfg.Ingest.TargetInstitution)

	maintenanceService := maintenance.NewService(
		eventPipeline,
		eventLoader,
		studentPipeline,
		studentLoader,
		directionPreprocessor,
		clusterService,
		recommendService,
		resetRepo,
		maintenanceRunRepo,
		maintenance.Paths{
			EventsInput:      filepath.Join(cfg.Ingest.SourcesDir, "events.csv"),
			EventsOutput:     filepath.Join(cfg.Ingest.ResultsDir, "events.json"),
			StudentsInput:    filepath.Join(cfg.Ingest.SourcesDir, "students.xlsx"),
			StudentsOutput:   filepath.Join(cfg.Ingest.ResultsDir, "students.json"),
			DirectionsInput:  filepath.Join(cfg.Ingest.SourcesDir, "directions.xlsx"),
			DirectionsOutput: filepath.Join(cfg.Ingest.ResultsDir, "directions_filtered.xlsx"),
		},
		maintenance.Defaults{
			ClusterTopK:         cfg.Cluster.TopK,
			SimilarityThreshold: cfg.Cluster.SimilarityThreshold,
		},
	)

	maintenanceTimeout := time.Duration(cfg.Recommend.MaintenanceTimeoutSecs) * time.Second

	// Init handler
	eventHandler := rest.NewEventHandler(eventService)
	studentHandler := rest.NewStudentHandler(studentService)
	recommendationHandler := rest.NewRecommendationHandler(recommendService, maintenanceTimeout, cfg.Recommend.DefaultLimit, cfg.Recommend.MinScore)
	favoriteHandler := rest.NewFavoriteHandler(favoriteService)
	botUserHandler := rest.NewBotUserHandler(botUserService)
	feedbackHandler := rest.NewFeedbackHandler(feedbackService)
	maintenanceHandler := rest.NewMaintenanceHandler(maintenanceService, maintenanceRunRepo, maintenanceTimeout, cfg.Ingest.SourcesDir)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupEventRoutes(api, eventHandler)
	router.SetupStudentRoutes(api, studentHandler)
	router.SetupRecommendationRoutes(api, recommendationHandler)
	router.SetupFavoriteRoutes(api, favoriteHandler)
	router.SetupBotUserRoutes(api, botUserHandler)
	router.SetupFeedbackRoutes(api, feedbackHandler)
	router.SetupMaintenanceRoutes(api, maintenanceHandler)

	// Daily sweep flips events past their end date to inactive
	sweepDone := make(chan struct{})
	go runDeactivationSweep(eventService, sweepDone)

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

	close(sweepDone)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := redisDB.CloseRedisClient(redisClient); err != nil {
		logger.Error("Redis close error", "error", err)
	}

	logger.Info("Server stopped")
}

func runDeactivationSweep(eventService *events.EventService, done <-chan struct{}) {
	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := eventService.DeactivateExpired(ctx); err != nil {
			logger.Error("Deactivation sweep failed", "error", err)
		}
	}

	sweep()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sweep()
		case <-done:
			return
		}
	}
}
