package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sma-ops-api/api/swagger"
	"github.com/noah-isme/sma-ops-api/internal/handler"
	"github.com/noah-isme/sma-ops-api/internal/middleware"
	"github.com/noah-isme/sma-ops-api/internal/repository"
	"github.com/noah-isme/sma-ops-api/internal/service"
	"github.com/noah-isme/sma-ops-api/pkg/cache"
	"github.com/noah-isme/sma-ops-api/pkg/config"
	"github.com/noah-isme/sma-ops-api/pkg/database"
	"github.com/noah-isme/sma-ops-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-ops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-ops-api/pkg/middleware/requestid"
)

// @title SMA Ops API
// @version 1.0.0
// @description Approval workflows, audit timelines and derived read models for school operations
// @BasePath /api/v1
// @schemes http

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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	workItemRepo := repository.NewWorkItemRepository(db)
	timelineRepo := repository.NewTimelineRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	tokenSvc := service.NewTokenService(cfg.JWT)
	accountingSvc := service.NewAccountingService(ledgerRepo, cacheRepo, cfg.Accounting.CacheTTL, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, cacheRepo, cfg.Attendance.DayStatusCacheTTL, nil, logr)
	timelineSvc := service.NewTimelineService(timelineRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var workflowSvc *service.WorkflowService
	if cfg.Notifications.Enabled {
		dispatcher := service.NewNotificationDispatcher(service.LogNotifier(logr), cfg.Notifications, logr)
		dispatcher.Start(ctx)
		defer dispatcher.Stop()
		workflowSvc = service.NewWorkflowService(workItemRepo, timelineRepo, accountingSvc, dispatcher, metricsSvc, logr)
	} else {
		workflowSvc = service.NewWorkflowService(workItemRepo, timelineRepo, accountingSvc, nil, metricsSvc, logr)
	}

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, tokenSvc, handler.Handlers{
		Issues:       handler.NewIssueHandler(workflowSvc),
		Reports:      handler.NewReportHandler(workflowSvc),
		Achievements: handler.NewAchievementHandler(workflowSvc),
		Attendance:   handler.NewAttendanceHandler(attendanceSvc),
		Students:     handler.NewStudentHandler(accountingSvc, attendanceSvc),
		Timeline:     handler.NewTimelineHandler(timelineSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
