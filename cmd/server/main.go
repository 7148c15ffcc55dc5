package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirasaad/finshare/infra/initializer"
	"github.com/amirasaad/finshare/pkg/app"
	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/webapi"
	log "github.com/charmbracelet/log"
)

// @title FinShare API
// @version 1.0.0
// @description Shared personal-finance ledger: accounts, transactions, budgets, shared goals and groups.
// @contact.name API Support
// @license.name MIT
// @host localhost:3000
// @BasePath /
//
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description "Enter your Bearer token in the format: `Bearer {token}`"
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	logger := slog.Default()
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer closeBus(deps, logger)

	fiberApp := webapi.SetupApp(app.New(deps, cfg))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	deps.Logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- fiberApp.Listen(addr) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		deps.Logger.Info("Shutting down", "signal", sig.String())
		return fiberApp.ShutdownWithTimeout(10 * time.Second)
	}
}

// closeBus releases broker connections held by the event bus.
func closeBus(deps *app.Deps, logger *slog.Logger) {
	closer, ok := deps.EventBus.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Error("Failed to close event bus", "error", err)
	}
}
