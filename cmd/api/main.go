package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/tutorlink-api/api/swagger"
	"github.com/noah-isme/tutorlink-api/internal/handler"
	"github.com/noah-isme/tutorlink-api/internal/middleware"
	"github.com/noah-isme/tutorlink-api/internal/models"
	"github.com/noah-isme/tutorlink-api/internal/repository"
	"github.com/noah-isme/tutorlink-api/internal/service"
	"github.com/noah-isme/tutorlink-api/pkg/cache"
	"github.com/noah-isme/tutorlink-api/pkg/config"
	"github.com/noah-isme/tutorlink-api/pkg/database"
	"github.com/noah-isme/tutorlink-api/pkg/export"
	"github.com/noah-isme/tutorlink-api/pkg/jobs"
	"github.com/noah-isme/tutorlink-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tutorlink-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tutorlink-api/pkg/middleware/requestid"
	"github.com/noah-isme/tutorlink-api/pkg/tracing"
)

// @title TutorLink Matching API
// @version 1.0.0
// @description Applicant ranking, tutor notification and application decisions for TutorLink.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg.Tracing)
	if err != nil {
		logr.Sugar().Warnw("tracing disabled", "error", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Ratings.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, rating cache disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	var cacheRepo *repository.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient)
	} else {
		cacheRepo = repository.NewCacheRepository(nil)
	}

	requestRepo := repository.NewTutoringRequestRepository(db)
	applicationRepo := repository.NewTutorApplicationRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Ratings.CacheTTL, logr, cfg.Ratings.CacheEnabled && redisClient != nil)
	ratingSvc := service.NewRatingService(reviewRepo, cacheSvc, cfg.Ratings.CacheTTL, logr)
	matchingSvc := service.NewMatchingService(
		requestRepo,
		applicationRepo,
		ratingSvc,
		profileRepo,
		notificationRepo,
		metricsSvc,
		service.MatchingConfig{MaxConcurrency: cfg.Matching.MaxConcurrency},
		logr,
	)

	refreshWorker := service.NewRankRefreshWorker(matchingSvc, metricsSvc, logr)
	refreshQueue := jobs.NewQueue("rank-refresh", refreshWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Matching.RefreshWorkers,
		MaxRetries: cfg.Matching.RefreshRetries,
		RetryDelay: cfg.Matching.RefreshDelay,
		Logger:     logr,
	})
	refreshQueue.Start(ctx)
	defer refreshQueue.Stop()

	refreshSvc := service.NewRankRefreshService(requestRepo, refreshQueue, logr)
	exportSvc := service.NewExportService(matchingSvc, export.NewCSVExporter(), export.NewPDFExporter(), validator.New(), logr)
	applicationSvc := service.NewApplicationService(applicationRepo, requestRepo, metricsSvc, logr)
	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	matchingHandler := handler.NewMatchingHandler(matchingSvc, refreshSvc, exportSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc)
	reviewHandler := handler.NewReviewHandler(ratingSvc)

	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsSvc))
	}
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenSvc))

	matching := api.Group("/matching")
	matching.GET("/rank/:requestId", matchingHandler.Rank)
	matching.POST("/rank/:requestId/refresh", matchingHandler.Refresh)
	matching.GET("/rank/:requestId/export", matchingHandler.Export)
	matching.POST("/notify/:requestId", matchingHandler.Notify)

	applications := api.Group("/applications")
	applications.POST("/:id/accept", middleware.RequireRoles(models.RoleTutee, models.RoleBoth), applicationHandler.Accept)

	api.GET("/reviews/users/:userId/rating", reviewHandler.Rating)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
