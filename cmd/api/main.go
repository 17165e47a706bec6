package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/api/http"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/api/http/handlers"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/auth"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/cache"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/config"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/events"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/observability"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/persistence"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/repository"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/service"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/sla"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	policyRepo := repository.NewSLAPolicyRepository(pool)

	policyCache := cache.NewPolicyCache(redis.Client, cfg.SLA.PolicyCacheTTL(), logger)
	dispatcher := events.NewInMemoryDispatcher()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		TeamRepo:    teamRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:  ticketRepo,
		UserRepo:    userRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
	})
	slaService := service.NewSLAService(service.SLADependencies{
		PolicyRepo: policyRepo,
		TeamRepo:   teamRepo,
		Cache:      policyCache,
		Classifier: sla.ClassifierConfig{
			WarningFraction: cfg.SLA.WarningFraction,
			WarningWindow:   cfg.SLA.WarningWindow(),
		},
	})
	policyService := service.NewPolicyService(policyRepo, policyCache)

	notificationService := service.NewNotificationService(dispatcher, logger.Named("notifications"))
	notificationService.RegisterHandlers()
	registerMetricsHandlers(dispatcher, metrics)

	sweeper := worker.NewSLASweeper(ticketRepo, teamRepo, slaService, policyCache, dispatcher, metrics, logger.Named("sweep"), cfg.Sweep)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("failed to start sla sweep", zap.Error(err))
	}
	defer sweeper.Stop()

	authMiddleware := auth.NewMiddleware(auth.NewTokenVerifier(cfg.Auth.JWTSecret))

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService, assignmentService, slaService),
		SLAPolicies:    handlers.NewSLAPoliciesHandler(policyService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// registerMetricsHandlers keeps the services metrics-free; counters are fed
// from the same events the notification stack consumes.
func registerMetricsHandlers(dispatcher events.Dispatcher, metrics *observability.Metrics) {
	dispatcher.Subscribe(events.EventTicketStatusChanged, func(_ context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.TicketStatusChangedPayload); ok {
			metrics.RecordTransition(string(event.TicketKind), string(payload.OldStatus), string(payload.NewStatus))
		}
		return nil
	})
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
