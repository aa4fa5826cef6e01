package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/availability-api/api/swagger"
	"github.com/noah-isme/availability-api/internal/handler"
	"github.com/noah-isme/availability-api/internal/ics"
	internalmiddleware "github.com/noah-isme/availability-api/internal/middleware"
	"github.com/noah-isme/availability-api/internal/repository"
	"github.com/noah-isme/availability-api/internal/service"
	"github.com/noah-isme/availability-api/pkg/cache"
	"github.com/noah-isme/availability-api/pkg/config"
	"github.com/noah-isme/availability-api/pkg/database"
	"github.com/noah-isme/availability-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/availability-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/availability-api/pkg/middleware/requestid"
)

// @title Availability API
// @version 0.1.0
// @description Overlays respondents' calendar busy blocks on availability event day windows.
// @BasePath /api/v1
// @schemes http
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()
	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			logr.Fatal("failed to apply schema", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Overlay.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, overlay cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	app := buildApp(cfg, db, redisClient, logr)

	if cfg.ICS.RefreshEnabled {
		if err := app.refresh.Start(ctx); err != nil {
			logr.Fatal("failed to start feed refresh", zap.Error(err))
		}
		defer app.refresh.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("signal received, shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

type app struct {
	router  *gin.Engine
	refresh *service.FeedRefreshService
}

func buildApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) *app {
	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Overlay.CacheTTL, logr, cfg.Overlay.CacheEnabled)

	eventRepo := repository.NewEventRepository(db)
	sourceRepo := repository.NewCalendarSourceRepository(db)

	fetcher := ics.NewFetcher(cfg.ICS.FetchTimeout, logr)
	provider := ics.NewProvider(fetcher, ics.ProviderConfig{
		Location:       cfg.Overlay.Location(),
		MaxOccurrences: cfg.ICS.MaxOccurrences,
		Recorder:       metrics,
		Logger:         logr,
	})

	tokens := service.NewTokenService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		Expiry: cfg.JWT.Expiration,
	})
	busySvc := service.NewBusyBlockService(sourceRepo, provider, cacheSvc, cfg.Overlay.CacheTTL, logr)
	eventSvc := service.NewEventService(eventRepo, validate, logr)
	sourceSvc := service.NewCalendarSourceService(sourceRepo, busySvc, validate, logr)
	overlaySvc := service.NewOverlayService(eventRepo, busySvc, metrics, validate, service.OverlayConfig{
		DefaultLocation: cfg.Overlay.Location(),
	}, logr)
	exportSvc := service.NewExportService(overlaySvc, logr, nil, nil)

	refresh, err := service.NewFeedRefreshService(sourceRepo, provider, service.FeedRefreshConfig{
		Schedule:   cfg.ICS.RefreshCron,
		Workers:    cfg.ICS.RefreshWorkers,
		MaxRetries: cfg.ICS.RefreshRetries,
	}, logr)
	if err != nil {
		logr.Fatal("invalid feed refresh config", zap.Error(err))
	}

	checks := map[string]handler.Pinger{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(apiPrefix(cfg.APIPrefix)), routeDeps{
		tokens:   tokens,
		events:   handler.NewEventHandler(eventSvc),
		sources:  handler.NewCalendarSourceHandler(sourceSvc),
		overlays: handler.NewOverlayHandler(overlaySvc, exportSvc),
		metrics:  metricsHandler,
	})

	return &app{router: r, refresh: refresh}
}

type routeDeps struct {
	tokens   internalmiddleware.TokenValidator
	events   *handler.EventHandler
	sources  *handler.CalendarSourceHandler
	overlays *handler.OverlayHandler
	metrics  *handler.MetricsHandler
}

func registerRoutes(api *gin.RouterGroup, deps routeDeps) {
	api.Use(internalmiddleware.WithResponseMeta())

	api.POST("/overlay", internalmiddleware.OptionalJWT(deps.tokens), deps.overlays.Compute)
	api.GET("/metrics/summary", deps.metrics.Summary)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(deps.tokens))

	secured.GET("/events", deps.events.List)
	secured.POST("/events", deps.events.Create)
	secured.GET("/events/:id", deps.events.Get)
	secured.DELETE("/events/:id", deps.events.Delete)
	secured.GET("/events/:id/overlay", deps.overlays.EventOverlay)
	secured.GET("/events/:id/overlay/export", deps.overlays.Export)

	secured.GET("/calendar-sources", deps.sources.List)
	secured.POST("/calendar-sources", deps.sources.Create)
	secured.DELETE("/calendar-sources/:id", deps.sources.Delete)
}

func apiPrefix(raw string) string {
	prefix := "/" + strings.Trim(strings.TrimSpace(raw), "/")
	if prefix == "/" {
		return "/api/v1"
	}
	return prefix
}
