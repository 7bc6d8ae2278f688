package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/hirelane/job-board/internal/api/http"
	"github.com/hirelane/job-board/internal/api/http/handlers"
	"github.com/hirelane/job-board/internal/auth"
	"github.com/hirelane/job-board/internal/config"
	"github.com/hirelane/job-board/internal/events"
	"github.com/hirelane/job-board/internal/notification"
	"github.com/hirelane/job-board/internal/observability"
	"github.com/hirelane/job-board/internal/persistence"
	"github.com/hirelane/job-board/internal/ratelimit"
	"github.com/hirelane/job-board/internal/repository"
	"github.com/hirelane/job-board/internal/service"
	"github.com/hirelane/job-board/internal/storage"
	"github.com/hirelane/job-board/internal/worker"
)

func main() {
	envFiles := pflag.StringSlice("env-file", nil, "env files to load before reading the environment")
	migrateOnly := pflag.Bool("migrate-only", false, "apply database migrations and exit")
	pflag.Parse()

	cfg, err := config.Load(*envFiles...)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Postgres.RunMigrations || *migrateOnly {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	if *migrateOnly {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	jobRepo := repository.NewJobRepository(pool)
	applicationRepo := repository.NewApplicationRepository(pool)
	historyRepo := repository.NewStatusHistoryRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	resumes, err := storage.NewLocalResumeStore(cfg.Storage.ResumeDir)
	if err != nil {
		logger.Fatal("failed to prepare resume storage", zap.Error(err))
	}

	var queue notification.Queue
	if cfg.Notification.Queue == "redis" {
		queue = notification.NewRedisQueue(redis.Client, "")
	} else {
		memQueue := notification.NewMemoryQueue(cfg.Notification.QueueSize)
		defer memQueue.Close()
		metrics.TrackQueueDepth(memQueue.Len)
		queue = memQueue
	}

	var transport notification.Transport
	if cfg.Notification.SMTPEnabled() {
		transport = notification.NewSMTPTransport(cfg.Notification)
	} else {
		logger.Warn("SMTP_HOST not set; status emails are logged instead of sent")
		transport = notification.NewLogTransport(logger)
	}
	mailer := notification.NewDispatcher(transport, cfg.Notification.EmailFrom, cfg.Notification.SendTimeout(), logger)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: userRepo,
		Logger:   logger,
	})
	jobService := service.NewJobService(service.JobDependencies{
		JobRepo:    jobRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	applicationService := service.NewApplicationService(service.ApplicationDependencies{
		ApplicationRepo:  applicationRepo,
		JobRepo:          jobRepo,
		HistoryRepo:      historyRepo,
		NotificationRepo: notificationRepo,
		Resumes:          resumes,
		Dispatcher:       dispatcher,
		Metrics:          metrics,
		Logger:           logger,
		MaxResumeBytes:   cfg.Storage.MaxResumeBytes,
	})
	dashboardService := service.NewDashboardService(jobRepo, applicationRepo)
	service.NewNotificationService(service.NotificationDependencies{
		Dispatcher:       dispatcher,
		NotificationRepo: notificationRepo,
		Queue:            queue,
		Metrics:          metrics,
		Logger:           logger,
	}).RegisterHandlers()

	notifier := worker.NewNotificationWorker(worker.NotificationWorkerConfig{
		Queue:       queue,
		Sender:      mailer,
		Attempts:    notificationRepo,
		Workers:     cfg.Notification.Workers,
		SendTimeout: cfg.Notification.SendTimeout(),
		Metrics:     metrics,
		Logger:      logger,
	})
	notifier.Start(ctx)

	var limiter ratelimit.Limiter
	if redis.Enabled() {
		limiter = ratelimit.NewRedisLimiter(redis.Client, "jobboard:ratelimit", cfg.RateLimit.AuthPerMinute, time.Minute)
	} else {
		local := ratelimit.NewLocalLimiter(cfg.RateLimit.AuthPerMinute, time.Minute)
		defer local.Stop()
		limiter = local
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		Immutable:    true,
		BodyLimit:    int(cfg.Storage.MaxResumeBytes) + 1<<20,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	checks := map[string]handlers.Pinger{"postgres": pg}
	if redis.Enabled() {
		checks["redis"] = redis
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks),
		Users:          handlers.NewUsersHandler(authService, dashboardService, applicationService, cfg.App.BaseURL),
		Jobs:           handlers.NewJobsHandler(jobService, applicationService, cfg.App.BaseURL),
		Applications:   handlers.NewApplicationsHandler(applicationService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
		AuthLimiter:    ratelimit.Middleware(limiter, time.Minute, logger),
		Gatherer:       registry,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	notifier.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
