package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/roadwise/roadwise-api/internal/handler"
	"github.com/roadwise/roadwise-api/internal/middleware"
	"github.com/roadwise/roadwise-api/internal/models"
	"github.com/roadwise/roadwise-api/internal/repository"
	"github.com/roadwise/roadwise-api/internal/service"
	"github.com/roadwise/roadwise-api/pkg/cache"
	"github.com/roadwise/roadwise-api/pkg/config"
	"github.com/roadwise/roadwise-api/pkg/database"
	"github.com/roadwise/roadwise-api/pkg/export"
	"github.com/roadwise/roadwise-api/pkg/logger"
	corsmiddleware "github.com/roadwise/roadwise-api/pkg/middleware/cors"
	reqidmiddleware "github.com/roadwise/roadwise-api/pkg/middleware/requestid"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is optional: without it the API runs uncached.
	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		redisClient = client
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	availabilityRepo := repository.NewAvailabilityRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	insightsRepo := repository.NewInsightsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Insights.CacheTTL, logr, cfg.Insights.Enabled)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret)
	insightsSvc := service.NewInsightsService(insightsRepo, cacheSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr, cfg.Insights)
	availabilitySvc := service.NewAvailabilityService(availabilityRepo, instructorRepo, insightsSvc, validate, logr)
	conflictSvc := service.NewConflictService(bookingRepo, availabilityRepo, metricsSvc, validate, logr)
	schedulerSvc := service.NewSchedulerService(instructorRepo, courseRepo, bookingRepo, availabilityRepo, metricsSvc, validate, logr, cfg.Scheduler)

	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	scheduleHandler := handler.NewScheduleHandler(schedulerSvc, conflictSvc)
	insightsHandler := handler.NewInsightsHandler(insightsSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	insightsSvc.StartRefresher(ctx)
	defer insightsSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenSvc))

	staff := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleInstructor)

	api.POST("/availability", staff, availabilityHandler.Create)
	api.GET("/availability", availabilityHandler.List)
	api.PUT("/availability", staff, availabilityHandler.Update)

	api.POST("/schedule/auto-suggest", scheduleHandler.AutoSuggest)
	api.POST("/schedule/conflicts", scheduleHandler.CheckConflicts)

	api.GET("/insights", staff, insightsHandler.Get)
	api.GET("/insights/export", staff, insightsHandler.Export)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
