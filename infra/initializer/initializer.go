package initializer

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/amirasaad/finshare/infra"
	infra_eventbus "github.com/amirasaad/finshare/infra/eventbus"
	infra_repository "github.com/amirasaad/finshare/infra/repository"
	"github.com/amirasaad/finshare/pkg/app"
	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/eventbus"
)

const (
	EventBusMemory   = "memory"
	EventBusRabbitMQ = "rabbitmq"
)

// InitializeDependencies initializes all the application dependencies
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	err error,
) {
	deps = &app.Deps{}
	logger := setupLogger(os.Stdout, cfg.Log)
	deps.Logger = logger

	// Initialize database
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}
	if cfg.DB.Migrate {
		if err = infra.RunMigrations(db, cfg.DB.Driver); err != nil {
			logger.Error("Failed to run migrations", "error", err)
			return nil, err
		}
		logger.Info("Migrations applied", "driver", cfg.DB.Driver)
	}

	// Initialize unit of work
	deps.Uow = infra_repository.NewUoW(db)

	deps.EventBus, err = initEventBus(cfg, logger)
	if err != nil {
		return nil, err
	}
	return deps, nil
}

// initEventBus picks the bus named by cfg.EventBus.Driver. A broker that
// cannot be reached degrades to the in-memory bus so the API still serves.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	driver := EventBusMemory
	if cfg.EventBus != nil && cfg.EventBus.Driver != "" {
		driver = cfg.EventBus.Driver
	}
	switch driver {
	case EventBusMemory:
		return infra_eventbus.NewWithMemory(logger), nil
	case EventBusRabbitMQ:
		if cfg.EventBus.URL == "" {
			return nil, fmt.Errorf("event bus %q requires EVENT_BUS_URL", driver)
		}
		bus, err := infra_eventbus.NewWithRabbitMQ(
			cfg.EventBus.URL,
			cfg.EventBus.Exchange,
			infra_eventbus.DefaultDecoders(),
			logger,
		)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, falling back to memory event bus", "error", err)
			return infra_eventbus.NewWithMemory(logger), nil
		}
		logger.Info("Using RabbitMQ event bus", "exchange", cfg.EventBus.Exchange)
		return bus, nil
	default:
		return nil, fmt.Errorf("unknown event bus driver %q", driver)
	}
}
