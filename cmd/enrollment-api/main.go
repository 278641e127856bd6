package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campushq/enrollment-api/api/swagger"
	"github.com/campushq/enrollment-api/internal/handler"
	"github.com/campushq/enrollment-api/internal/middleware"
	"github.com/campushq/enrollment-api/internal/repository"
	"github.com/campushq/enrollment-api/internal/service"
	"github.com/campushq/enrollment-api/pkg/cache"
	"github.com/campushq/enrollment-api/pkg/config"
	"github.com/campushq/enrollment-api/pkg/database"
	"github.com/campushq/enrollment-api/pkg/jobs"
	"github.com/campushq/enrollment-api/pkg/logger"
	corsmiddleware "github.com/campushq/enrollment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushq/enrollment-api/pkg/middleware/requestid"
	"github.com/campushq/enrollment-api/pkg/storage"
)

// @title Enrollment API
// @version 1.0.0
// @description Course enrollment engine for the student portal
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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	feeSchedule, err := service.LoadFeeSchedule(cfg.Fees.ScheduleFile)
	if err != nil {
		logr.Sugar().Fatalw("failed to load fee schedule", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	snapshots := repository.NewSnapshotRepository(redisClient, cfg.Enrollment.SnapshotKeyPrefix, logr)
	courses := repository.NewCourseRepository(db)
	records := repository.NewAcademicRecordRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ledger, err := service.NewEnrollmentLedger(ctx, snapshots, cfg.Enrollment.MaxUnitsPerSemester, metricsSvc, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to load enrollment ledger", "error", err)
	}

	validate := validator.New()
	enrollmentSvc := service.NewEnrollmentService(ledger, courses, records, metricsSvc, validate, logr)
	tuitionSvc := service.NewTuitionService(ledger, records, feeSchedule, logr)
	catalogSvc := service.NewCatalogService(courses, logr)

	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	tuitionHandler := handler.NewTuitionHandler(tuitionSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc := service.NewExportService(enrollmentSvc, tuitionSvc, store, signer, logr)
		queue := jobs.NewQueue("exports", exportSvc.Process, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()
		exportSvc.AttachQueue(queue)
		exportHandler = handler.NewExportHandler(exportSvc)

		go func() {
			ticker := time.NewTicker(cfg.Exports.CleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					exportSvc.Cleanup(cfg.Exports.SignedURLTTL)
				}
			}
		}()
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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/enrollments", enrollmentHandler.Enroll)
		api.DELETE("/enrollments/:studentId/:courseCode", enrollmentHandler.Drop)

		api.GET("/students/:id/enrollments", enrollmentHandler.Enrolled)
		api.GET("/students/:id/schedule", enrollmentHandler.Schedule)
		api.GET("/students/:id/waitlist", enrollmentHandler.Waitlisted)
		api.GET("/students/:id/tuition", tuitionHandler.Calculate)
		api.GET("/students/:id/tuition/assessment", tuitionHandler.Assess)

		api.GET("/courses", catalogHandler.List)
		api.GET("/courses/:code", catalogHandler.Get)

		if exportHandler != nil {
			api.POST("/students/:id/exports", exportHandler.Create)
			api.GET("/exports/jobs/:id", exportHandler.Status)
			api.GET("/exports/:token", exportHandler.Download)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
