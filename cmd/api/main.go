package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/azis003/tick-track/internal/api/http"
	"github.com/azis003/tick-track/internal/api/http/handlers"
	"github.com/azis003/tick-track/internal/auth"
	"github.com/azis003/tick-track/internal/config"
	"github.com/azis003/tick-track/internal/events"
	"github.com/azis003/tick-track/internal/observability"
	"github.com/azis003/tick-track/internal/persistence"
	"github.com/azis003/tick-track/internal/repository"
	"github.com/azis003/tick-track/internal/service"
	"github.com/azis003/tick-track/internal/storage"
	"github.com/azis003/tick-track/internal/taskqueue"
	"github.com/azis003/tick-track/internal/worker"
	"github.com/azis003/tick-track/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	files, err := newFileStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to init attachment storage", zap.Error(err))
	}

	pool := pg.Pool
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	logRepo := repository.NewTicketLogRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	approvalRepo := repository.NewApprovalRepository(pool)
	workflowStore := repository.NewWorkflowStore(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventTicketTransitioned, func(ctx context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.TicketTransitionedPayload); ok {
			metrics.RecordTransition(string(payload.Action))
		}
		return nil
	})

	engine := workflow.NewEngine(workflow.Dependencies{
		Store:           workflowStore,
		Files:           files,
		Capabilities:    auth.RoleChecker{},
		Dispatcher:      dispatcher,
		Logger:          logger,
		AutoCloseWindow: cfg.Workflow.AutoCloseWindow(),
		CommentPolicy:   workflow.CommentPolicy(cfg.Workflow.CommentPolicy),
	})

	queueService := taskqueue.NewService(taskqueue.Dependencies{
		Source:     ticketRepo,
		Cache:      taskqueue.NewCountCache(redis.Client, cfg.Workflow.QueueCountTTL()),
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	queryService := service.NewTicketQueryService(service.QueryDependencies{
		TicketRepo:     ticketRepo,
		LogRepo:        logRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		ApprovalRepo:   approvalRepo,
		UserRepo:       userRepo,
	})

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: userRepo})
	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	autoCloser := worker.NewAutoCloseWorker(engine, cfg.Workflow.SweepInterval(), logger, metrics)
	go autoCloser.Run(ctx)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(engine, queryService, files),
		Queue:          handlers.NewQueueHandler(queueService, queryService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func newFileStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.Store, error) {
	if cfg.Driver == "minio" {
		logger.Info("using minio attachment storage", zap.String("bucket", cfg.MinioBucket))
		return storage.NewMinioStore(ctx, cfg)
	}
	logger.Info("using local attachment storage", zap.String("dir", cfg.LocalDir))
	return storage.NewLocalStore(cfg.LocalDir), nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
