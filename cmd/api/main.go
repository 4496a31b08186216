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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/sige-edu/sige-api/api/swagger"
	"github.com/sige-edu/sige-api/internal/handler"
	"github.com/sige-edu/sige-api/internal/middleware"
	"github.com/sige-edu/sige-api/internal/repository"
	"github.com/sige-edu/sige-api/internal/service"
	"github.com/sige-edu/sige-api/pkg/cache"
	"github.com/sige-edu/sige-api/pkg/config"
	"github.com/sige-edu/sige-api/pkg/database"
	"github.com/sige-edu/sige-api/pkg/jobs"
	"github.com/sige-edu/sige-api/pkg/logger"
	corsmiddleware "github.com/sige-edu/sige-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sige-edu/sige-api/pkg/middleware/requestid"
	"github.com/sige-edu/sige-api/pkg/storage"
)

// @title SIGE API
// @version 1.0.0
// @description School management information system
// @BasePath /api/v1
// @schemes http

const sweepInterval = time.Hour

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

	if err := run(cfg, logr); err != nil {
		logr.Sugar().Fatalw("server exited", "error", err)
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The API degrades gracefully without Redis: dashboard responses
		// are computed on every request.
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return fmt.Errorf("init report storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	financeRepo := repository.NewFinanceRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	reportData := repository.NewReportDataSource(studentRepo, gradeRepo, attendanceRepo, financeRepo)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userService := service.NewUserService(userRepo, validate, logr)
	schoolService := service.NewSchoolService(schoolRepo, validate, logr)
	studentService := service.NewStudentService(studentRepo, userRepo, validate, logr)
	teacherService := service.NewTeacherService(teacherRepo, userRepo, validate, logr)
	classService := service.NewClassService(classRepo, enrollmentRepo, studentRepo, cacheRepo, validate, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, validate, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, enrollmentRepo, validate, logr)
	gradeService := service.NewGradeService(gradeRepo, validate, logr)
	financeService := service.NewFinanceService(financeRepo, validate, logr)
	announcementService := service.NewAnnouncementService(announcementRepo, validate, logr)
	messageService := service.NewMessageService(messageRepo, userRepo, validate, logr)
	dashboardService := service.NewDashboardService(dashboardRepo, cacheRepo, logr, service.DashboardConfig{
		CacheTTL:                cfg.Dashboard.CacheTTL,
		LowAttendanceThreshold:  cfg.Dashboard.LowAttendanceThreshold,
		AttendanceWindowDays:    cfg.Dashboard.AttendanceWindowDays,
		RecentActivityWindow:    cfg.Dashboard.RecentActivityWindow,
		MaxAlerts:               cfg.Dashboard.MaxAlerts,
		MaxRecentActivities:     cfg.Dashboard.MaxRecentActivities,
		ActivitySamplePerSource: cfg.Dashboard.ActivitySamplePerSource,
	})
	reportService := service.NewReportService(reportRepo, reportData, store, signer, logr)
	metricsService := service.NewMetricsService()
	dashboardService.SetMetrics(metricsService)
	reportService.SetMetrics(metricsService)

	reportQueue := jobs.NewQueue("reports", reportService.Process, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	reportService.SetQueue(reportQueue)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reportQueue.Start(ctx)
	defer reportQueue.Stop()

	bootstrap := service.NewBootstrapService(userRepo, logr, cfg.Bootstrap)
	if err := bootstrap.Run(ctx); err != nil {
		return fmt.Errorf("bootstrap seed: %w", err)
	}

	go runSweeps(ctx, logr, financeService, announcementService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(reqidmiddleware.Middleware())
	router.Use(logger.GinMiddleware(logr))
	router.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	router.Use(middleware.Metrics(metricsService))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	router.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(router.Group(cfg.APIPrefix), authService, routeHandlers{
		auth:          handler.NewAuthHandler(authService, userService),
		users:         handler.NewUserHandler(userService),
		schools:       handler.NewSchoolHandler(schoolService),
		students:      handler.NewStudentHandler(studentService),
		teachers:      handler.NewTeacherHandler(teacherService),
		classes:       handler.NewClassHandler(classService, schoolService, teacherService),
		enrollments:   handler.NewEnrollmentHandler(enrollmentService),
		attendance:    handler.NewAttendanceHandler(attendanceService),
		grades:        handler.NewGradeHandler(gradeService),
		finance:       handler.NewFinanceHandler(financeService),
		communication: handler.NewCommunicationHandler(announcementService, messageService),
		dashboard:     handler.NewDashboardHandler(dashboardService),
		reports:       handler.NewReportHandler(reportService),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// runSweeps periodically flips overdue payments and expires published
// announcements until the context is cancelled.
func runSweeps(ctx context.Context, logr *zap.Logger, finance *service.FinanceService, announcements *service.AnnouncementService) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := finance.SweepOverdue(ctx); err != nil {
				logr.Warn("overdue sweep failed", zap.Error(err))
			} else if n > 0 {
				logr.Info("payments marked overdue", zap.Int64("count", n))
			}
			if n, err := announcements.SweepExpired(ctx); err != nil {
				logr.Warn("announcement sweep failed", zap.Error(err))
			} else if n > 0 {
				logr.Info("announcements expired", zap.Int64("count", n))
			}
		}
	}
}
