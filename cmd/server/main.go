package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark-c-hall/moviecards/internal/config"
	"github.com/mark-c-hall/moviecards/internal/handler"
	"github.com/mark-c-hall/moviecards/internal/logging"
	"github.com/mark-c-hall/moviecards/internal/metrics"
	"github.com/mark-c-hall/moviecards/internal/moviecards"
	"github.com/mark-c-hall/moviecards/internal/rest"
	"github.com/mark-c-hall/moviecards/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, logging.FormatJSON)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, os.Stdout)
	if err != nil {
		log.Fatalf("failed to set up telemetry: %v", err)
	}

	if err := metrics.Register(providers.Registry); err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	client := rest.NewClient(cfg.Client, logger)
	catalog := moviecards.NewCatalog(client, cfg.Client.APIURL)

	h, err := handler.NewHandler(catalog, providers.Registry, cfg.Server, logger)
	if err != nil {
		log.Fatalf("failed to initialize handler: %v", err)
	}

	srv := http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr, "api_url", cfg.Client.APIURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(timeoutCtx); err != nil {
		logger.Error("shutdown did not complete cleanly", "error", err)
	}
	if err := providers.Shutdown(timeoutCtx); err != nil {
		logger.Error("telemetry shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
