package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "rescuetrack/docs"
	"rescuetrack/internal/analytics"
	"rescuetrack/internal/caching"
	"rescuetrack/internal/config"
	"rescuetrack/internal/handlers"
	"rescuetrack/internal/jobs"
	"rescuetrack/internal/jobs/background"
	"rescuetrack/internal/logger"
	"rescuetrack/internal/metrics"
	"rescuetrack/internal/middleware"
	"rescuetrack/internal/repositories"
	"rescuetrack/internal/services"
	"rescuetrack/pkg/database"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to the TOML config file (default $"+config.PathEnv+")")
	flag.Parse()

	cfg, err := config.Load(config.ResolvePath(*configPath))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = random.String(32)
		zl.Warn("JWT_SECRET not set, using a generated secret; sessions will not survive a restart")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.NewPool(ctx, cfg.Database.URL, zl)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		zl.Info("database schema applied")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Redis
	redisClient := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()
	cacheSvc := caching.NewRedisCacheService(redisClient, zl)

	// Report storage is optional
	var storage services.MinioService
	if cfg.Minio.Endpoint != "" {
		minioSvc, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL)
		if err != nil {
			return fmt.Errorf("failed to initialize MinIO: %w", err)
		}
		if err := minioSvc.EnsureBucketExists(ctx); err != nil {
			zl.Warn("report storage unavailable, stored reports disabled", zap.Error(err))
		} else {
			storage = minioSvc
		}
	}

	var jwks *keyfunc.JWKS
	if cfg.Auth.JWKSURL != "" {
		if jwks, err = middleware.NewJWKS(cfg.Auth.JWKSURL, zl); err != nil {
			return fmt.Errorf("failed to load JWKS: %w", err)
		}
		defer jwks.EndBackground()
	}

	// Repositories
	orgRepo := repositories.NewOrganizationRepository(pool)
	staffRepo := repositories.NewStaffRepository(pool)
	sessionRepo := repositories.NewSessionRepository(pool)
	inviteRepo := repositories.NewInviteRepository(pool)
	speciesRepo := repositories.NewSpeciesRepository(pool)
	animalRepo := repositories.NewAnimalRepository(pool)
	behaviorRepo := repositories.NewBehaviorRepository(pool)
	examRepo := repositories.NewBodyExamRepository(pool)
	commonBehaviorRepo := repositories.NewCommonBehaviorRepository(pool)
	auditLogRepo := repositories.NewAuditLogsRepository(pool)

	// Background task queue
	asynqClient := asynq.NewClient(jobs.RedisOpt(cfg.Redis))
	defer asynqClient.Close()
	inviteNotifier := jobs.NewInviteEnqueuer(asynqClient, zl)

	// Services
	auditSvc := services.NewAuditLogsService(auditLogRepo, zl)
	rbacSvc := services.NewRBACService()
	authSvc := services.NewAuthService(staffRepo, orgRepo, inviteRepo, sessionRepo, cacheSvc, m, zl, cfg.Auth)
	orgSvc := services.NewOrganizationService(orgRepo, auditSvc)
	staffSvc := services.NewStaffService(staffRepo, cacheSvc, auditSvc, zl)
	inviteSvc := services.NewInviteService(inviteRepo, orgRepo, staffRepo, inviteNotifier, auditSvc, zl, cfg.Server.SiteURL, cfg.Auth.InviteTTL.Duration)
	speciesSvc := services.NewSpeciesService(speciesRepo, cacheSvc, auditSvc, zl)
	animalSvc := services.NewAnimalService(animalRepo, speciesRepo, cacheSvc, auditSvc, zl)
	behaviorSvc := services.NewBehaviorService(behaviorRepo, animalRepo, cacheSvc, auditSvc, zl, cfg.Limits)
	examSvc := services.NewBodyExamService(examRepo, animalRepo, cacheSvc, auditSvc, zl, cfg.Limits)
	commonBehaviorSvc := services.NewCommonBehaviorService(commonBehaviorRepo, speciesRepo, auditSvc)
	reportSvc := services.NewReportService(behaviorSvc, examSvc, animalRepo, speciesRepo, staffRepo, orgRepo, storage, m, zl, cfg.Limits)
	dashboardSvc := analytics.NewDashboardService(orgRepo, animalRepo, speciesRepo, staffRepo, behaviorRepo, examRepo, cacheSvc, m, zl)

	// Workers
	worker := jobs.NewWorker(*cfg, zl)
	mux := asynq.NewServeMux()
	jobs.NewEmailHandlers(services.NewEmailSender(cfg.Email, zl), m, zl).Register(mux)
	if err := worker.Start(mux); err != nil {
		return fmt.Errorf("failed to start task worker: %w", err)
	}
	defer worker.Shutdown()

	scheduler, err := background.NewJobScheduler(cfg.Jobs, inviteSvc, sessionRepo, dashboardSvc, m, zl)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			zl.Warn("scheduler shutdown", zap.Error(err))
		}
	}()

	// Middleware
	rbac := middleware.NewRBACMiddleware(rbacSvc)
	perm := rbac.RequirePermission
	versionMiddleware := middleware.NewVersionMiddleware()
	auditMiddleware := middleware.NewAuditMiddleware(auditSvc, zl)

	// Handlers
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, storage, version)
	authHandlers := handlers.NewAuthHandlers(authSvc, cfg.Server.SecureCookies, zl)
	orgHandlers := handlers.NewOrganizationHandlers(orgSvc, zl)
	staffHandlers := handlers.NewStaffHandlers(staffSvc, zl)
	inviteHandlers := handlers.NewInviteHandlers(inviteSvc, zl)
	speciesHandlers := handlers.NewSpeciesHandlers(speciesSvc, zl)
	animalHandlers := handlers.NewAnimalHandlers(animalSvc, zl)
	behaviorHandlers := handlers.NewBehaviorHandlers(behaviorSvc, zl)
	examHandlers := handlers.NewBodyExamHandlers(examSvc, zl)
	commonBehaviorHandlers := handlers.NewCommonBehaviorHandlers(commonBehaviorSvc, zl)
	reportHandlers := handlers.NewReportHandlers(reportSvc, zl)
	dashboardHandlers := handlers.NewDashboardHandlers(dashboardSvc, zl)
	auditHandlers := handlers.NewAuditLogsHandlers(auditSvc, zl)
	jobHandlers := handlers.NewJobHandlers(scheduler, zl)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Accept-Version"},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, "X-API-Version"},
	}))
	e.Use(middleware.Metrics(m))
	e.Use(middleware.RequestLogger(zl))

	// Probes and tooling
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api", versionMiddleware.VersionHeader(), auditMiddleware.AuditRequest())

	// Public routes
	api.POST("/auth/signup/admin", authHandlers.SignupAdmin)
	api.POST("/auth/signup/user", authHandlers.SignupUser)
	api.POST("/auth/login", authHandlers.Login)
	api.POST("/auth/refresh", authHandlers.Refresh)
	api.GET("/invites/validate", inviteHandlers.Validate)
	api.GET("/organizations/by-invite-code/:code", orgHandlers.GetByInviteCode)

	// Protected routes
	protected := api.Group("",
		echojwt.WithConfig(middleware.JWTConfig([]byte(cfg.Auth.JWTSecret), jwks, middleware.ExternalIssuer{
			Issuer:   cfg.Auth.JWKSIssuer,
			Audience: cfg.Auth.JWKSAudience,
		})),
		middleware.Authenticate(authSvc, zl),
	)

	protected.POST("/auth/logout", authHandlers.Logout)
	protected.GET("/auth/me", authHandlers.Me)

	protected.GET("/organization", orgHandlers.Get, perm(services.PermRecordsRead))
	protected.PUT("/organization", orgHandlers.Update, perm(services.PermOrganizationAdm))
	protected.POST("/organization/invite-code", orgHandlers.RegenerateInviteCode, perm(services.PermOrganizationAdm))

	protected.GET("/staff", staffHandlers.List, perm(services.PermStaffRead))
	protected.GET("/staff/count", staffHandlers.Count, perm(services.PermStaffRead))
	protected.GET("/staff/:id", staffHandlers.Get, perm(services.PermStaffRead))
	protected.PUT("/staff/:id", staffHandlers.Update, perm(services.PermStaffRead))
	protected.DELETE("/staff/:id", staffHandlers.Delete, perm(services.PermStaffManage))
	protected.GET("/staff/:id/behaviors", behaviorHandlers.ListByStaff, perm(services.PermRecordsRead))
	protected.GET("/staff/:id/body-exams", examHandlers.ListByStaff, perm(services.PermRecordsRead))

	protected.GET("/invites", inviteHandlers.List, perm(services.PermInvitesManage))
	protected.POST("/invites", inviteHandlers.Create, perm(services.PermInvitesManage))
	protected.DELETE("/invites/:id", inviteHandlers.Revoke, perm(services.PermInvitesManage))

	protected.GET("/species", speciesHandlers.List, perm(services.PermRecordsRead))
	protected.POST("/species", speciesHandlers.Create, perm(services.PermRecordsWrite))
	protected.GET("/species/count", speciesHandlers.Count, perm(services.PermRecordsRead))
	protected.GET("/species/:id", speciesHandlers.Get, perm(services.PermRecordsRead))
	protected.PUT("/species/:id", speciesHandlers.Update, perm(services.PermRecordsWrite))
	protected.DELETE("/species/:id", speciesHandlers.Delete, perm(services.PermRecordsWrite))
	protected.GET("/species/:id/animals", animalHandlers.ListBySpecies, perm(services.PermRecordsRead))
	protected.GET("/species/:id/common-behaviors", commonBehaviorHandlers.ListBySpecies, perm(services.PermRecordsRead))

	protected.GET("/animals", animalHandlers.List, perm(services.PermRecordsRead))
	protected.POST("/animals", animalHandlers.Create, perm(services.PermRecordsWrite))
	protected.GET("/animals/count", animalHandlers.Count, perm(services.PermRecordsRead))
	protected.GET("/animals/:id", animalHandlers.Get, perm(services.PermRecordsRead))
	protected.PUT("/animals/:id", animalHandlers.Update, perm(services.PermRecordsWrite))
	protected.DELETE("/animals/:id", animalHandlers.Delete, perm(services.PermRecordsWrite))
	protected.GET("/animals/:id/behaviors", behaviorHandlers.ListByAnimal, perm(services.PermRecordsRead))
	protected.GET("/animals/:id/body-exams", examHandlers.ListByAnimal, perm(services.PermRecordsRead))

	protected.GET("/behaviors", behaviorHandlers.List, perm(services.PermRecordsRead))
	protected.POST("/behaviors", behaviorHandlers.Create, perm(services.PermRecordsWrite))
	protected.GET("/behaviors/count", behaviorHandlers.Count, perm(services.PermRecordsRead))
	protected.GET("/behaviors/:id", behaviorHandlers.Get, perm(services.PermRecordsRead))
	protected.PUT("/behaviors/:id", behaviorHandlers.Update, perm(services.PermRecordsWrite))
	protected.DELETE("/behaviors/:id", behaviorHandlers.Delete, perm(services.PermRecordsWrite))

	protected.GET("/body-exams", examHandlers.List, perm(services.PermRecordsRead))
	protected.POST("/body-exams", examHandlers.Create, perm(services.PermRecordsWrite))
	protected.GET("/body-exams/count", examHandlers.Count, perm(services.PermRecordsRead))
	protected.GET("/body-exams/:id", examHandlers.Get, perm(services.PermRecordsRead))
	protected.PUT("/body-exams/:id", examHandlers.Update, perm(services.PermRecordsWrite))
	protected.DELETE("/body-exams/:id", examHandlers.Delete, perm(services.PermRecordsWrite))

	protected.GET("/common-behaviors", commonBehaviorHandlers.List, perm(services.PermRecordsRead))
	protected.POST("/common-behaviors", commonBehaviorHandlers.Create, perm(services.PermRecordsWrite))
	protected.GET("/common-behaviors/:id", commonBehaviorHandlers.Get, perm(services.PermRecordsRead))
	protected.PUT("/common-behaviors/:id", commonBehaviorHandlers.Update, perm(services.PermRecordsWrite))
	protected.DELETE("/common-behaviors/:id", commonBehaviorHandlers.Delete, perm(services.PermRecordsWrite))

	reports := protected.Group("/reports", perm(services.PermReportsRead))
	reports.POST("/behaviors", reportHandlers.Behaviors)
	reports.POST("/body-exams", reportHandlers.BodyExams)
	reports.POST("/bodyExams", reportHandlers.BodyExams)
	reports.POST("/species", reportHandlers.Species)
	reports.POST("/staff", reportHandlers.Staff)
	reports.POST("/pdf", reportHandlers.PDF)

	protected.GET("/dashboard/stats", dashboardHandlers.Stats, perm(services.PermRecordsRead))
	protected.GET("/dashboard/activity", dashboardHandlers.Activity, perm(services.PermRecordsRead))

	protected.GET("/audit-logs", auditHandlers.ListAuditLogs, perm(services.PermAuditRead))

	protected.GET("/jobs", jobHandlers.List, perm(services.PermOrganizationAdm))
	protected.POST("/jobs/:name/run", jobHandlers.Run, perm(services.PermOrganizationAdm))

	// Start server
	errCh := make(chan error, 1)
	go func() {
		zl.Info("rescuetrack server starting", zap.String("version", version), zap.Int("port", cfg.Server.Port))
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
