package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/manday-tracker/internal/api/http"
	"github.com/spec-kit/manday-tracker/internal/api/http/handlers"
	"github.com/spec-kit/manday-tracker/internal/config"
	"github.com/spec-kit/manday-tracker/internal/events"
	"github.com/spec-kit/manday-tracker/internal/observability"
	"github.com/spec-kit/manday-tracker/internal/persistence"
	"github.com/spec-kit/manday-tracker/internal/repository"
	"github.com/spec-kit/manday-tracker/internal/service"
	"github.com/spec-kit/manday-tracker/internal/worker"
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

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	ticketRepo := repository.NewTicketRepository(store)
	customerRepo := repository.NewCustomerRepository(store)
	settingsRepo := repository.NewSettingsRepository(store)

	dispatcher := events.NewInMemoryDispatcher()

	customerService := service.NewCustomerService(cfg.Sheet, service.CustomerDependencies{
		CustomerRepo: customerRepo,
		SettingsRepo: settingsRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		CustomerSvc: customerService,
		Dispatcher:  dispatcher,
	})

	if err := customerService.Load(ctx); err != nil {
		logger.Fatal("failed to load customers", zap.Error(err))
	}
	if err := ticketService.Load(ctx); err != nil {
		logger.Fatal("failed to load tickets", zap.Error(err))
	}

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store),
		Tickets:   handlers.NewTicketsHandler(ticketService),
		Customers: handlers.NewCustomersHandler(customerService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// openStore selects the key-value driver configured in STORAGE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (persistence.KV, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverRedis:
		store := persistence.NewRedisKV(cfg.Redis, logger)
		return store, store.Close, nil
	case config.DriverPostgres:
		store, err := persistence.NewPostgresKV(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, store.PoolHandle(), logger); err != nil {
				store.Close()
				return nil, nil, err
			}
		}
		return store, store.Close, nil
	default:
		logger.Warn("using in-memory store; data will not survive restarts")
		return persistence.NewMemoryKV(), func() {}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
