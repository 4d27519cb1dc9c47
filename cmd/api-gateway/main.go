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

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/civic-triage-api/api/swagger"
	"github.com/noah-isme/civic-triage-api/internal/classifier"
	"github.com/noah-isme/civic-triage-api/internal/handler"
	"github.com/noah-isme/civic-triage-api/internal/middleware"
	"github.com/noah-isme/civic-triage-api/internal/repository"
	"github.com/noah-isme/civic-triage-api/internal/routes"
	"github.com/noah-isme/civic-triage-api/internal/service"
	"github.com/noah-isme/civic-triage-api/pkg/cache"
	"github.com/noah-isme/civic-triage-api/pkg/config"
	"github.com/noah-isme/civic-triage-api/pkg/database"
	"github.com/noah-isme/civic-triage-api/pkg/export"
	"github.com/noah-isme/civic-triage-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/civic-triage-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/civic-triage-api/pkg/middleware/requestid"
)

// @title Civic Triage API
// @version 1.0.0
// @description Civic complaint intake, moderation, duplicate detection and triage
// @BasePath /api/v1
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

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			EnableTracing:    cfg.Sentry.TracesSampleRate > 0,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
			Environment:      cfg.Env,
		}); err != nil {
			logr.Warn("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	complaintRepo := repository.NewComplaintRepository(db)
	municipalityRepo := repository.NewMunicipalityRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	provider, err := classifier.NewProvider(cfg.Classifier)
	if err != nil {
		logr.Fatal("invalid classifier configuration", zap.Error(err))
	}
	if provider == nil {
		logr.Info("no classifier configured, urgency falls back to the default priority")
	}
	textClassifier := classifier.NewAdapter(provider,
		classifier.WithTimeout(cfg.Classifier.Timeout),
		classifier.WithRateLimit(cfg.Classifier.RatePerSecond, cfg.Classifier.Burst),
		classifier.WithLogger(logr.Named("classifier")),
		classifier.WithRecorder(metrics),
	)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, redisClient != nil && cfg.Dashboard.CacheEnabled)
	authorizer := service.NewMunicipalityAuthorizer(municipalityRepo)
	identity := service.NewIdentityService(cfg.JWT.Secret)

	moderationSvc := service.NewModerationService(service.ModerationServiceParams{
		Complaints:     complaintRepo,
		Profiles:       profileRepo,
		Municipalities: municipalityRepo,
		Classifier:     textClassifier,
		Cache:          cacheSvc,
		Metrics:        metrics,
		Validator:      validate,
		Logger:         logr,
	})
	rankingSvc := service.NewRankingService(complaintRepo, logr)
	duplicateSvc := service.NewDuplicateService(complaintRepo, textClassifier, logr)
	lifecycleSvc := service.NewLifecycleService(complaintRepo, authorizer, cacheSvc, metrics, validate, logr)
	complaintSvc := service.NewComplaintService(complaintRepo, municipalityRepo, reviewRepo, validate, logr)
	reviewSvc := service.NewReviewService(reviewRepo, complaintRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, municipalityRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	exportSvc := service.NewExportService(complaintRepo, municipalityRepo, authorizer, logr, export.NewCSVExporter(), export.NewPDFExporter())

	readiness := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		readiness["redis"] = cacheRepo.Ping
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	routes.Setup(r, cfg.APIPrefix, identity, routes.Handlers{
		Complaints:    handler.NewComplaintHandler(moderationSvc, complaintSvc),
		Ranking:       handler.NewRankingHandler(rankingSvc),
		Duplicates:    handler.NewDuplicateHandler(duplicateSvc),
		Lifecycle:     handler.NewLifecycleHandler(lifecycleSvc),
		Municipality:  handler.NewMunicipalityHandler(complaintSvc, dashboardSvc, exportSvc),
		Reviews:       handler.NewReviewHandler(reviewSvc),
		Observability: handler.NewMetricsHandler(metrics, readiness),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "classifier", cfg.Classifier.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server shutdown error", zap.Error(err))
	}
}
