package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/usdt-vault/vault_service/internal/api/routes"
	"github.com/usdt-vault/vault_service/internal/infrastructure/config"
	"github.com/usdt-vault/vault_service/internal/infrastructure/database"
	"github.com/usdt-vault/vault_service/internal/infrastructure/di"
	"github.com/usdt-vault/vault_service/pkg/graceful"
	"github.com/usdt-vault/vault_service/pkg/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	tracingShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		CollectorURL: cfg.Tracing.CollectorURL,
		Environment:  cfg.Environment,
		SampleRate:   cfg.Tracing.SampleRate,
		Insecure:     cfg.Tracing.Insecure,
	}, log.Zap())
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if cfg.Store.Driver == config.StoreDriverPostgres {
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath, database.MigrateUp); err != nil {
			log.Warn("Failed to run migrations", "error", err)
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	container, err := di.NewContainer(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create DI container: %w", err)
	}
	if err := container.StartWorkers(); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        routes.SetupRoutes(container),
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	shutdown := graceful.NewShutdownManager(server, log)
	shutdown.Register(container)
	shutdown.Register(graceful.ShutdownFunc(tracingShutdown))

	go func() {
		log.Info("Starting server",
			"addr", server.Addr,
			"environment", cfg.Environment,
			"store", container.Store.Name(),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	shutdown.WaitForShutdown()
	return nil
}
