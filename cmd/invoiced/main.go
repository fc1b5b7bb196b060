package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/invoiceflow/invoice-server/internal/common"
	"github.com/invoiceflow/invoice-server/internal/export"
	"github.com/invoiceflow/invoice-server/internal/extract"
	"github.com/invoiceflow/invoice-server/internal/extract/gateway"
	"github.com/invoiceflow/invoice-server/internal/invoice"
	"github.com/invoiceflow/invoice-server/internal/repository"
	"github.com/invoiceflow/invoice-server/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}

	invoiceRepo := repository.NewInvoiceRepository(pool, logger)
	profileRepo := repository.NewProfileRepository(pool, logger)
	exporter := export.NewService(invoiceRepo, logger)

	completer := gateway.NewClient(gateway.Config{
		APIKey:      cfg.Gateway.APIKey,
		BaseURL:     cfg.Gateway.BaseURL,
		Model:       cfg.Gateway.Model,
		Temperature: cfg.Gateway.Temperature,
		Timeout:     cfg.Gateway.Timeout,
	}, logger)

	normalizer := invoice.NewNormalizer(logger)
	orchestrator := extract.NewOrchestrator(completer, normalizer, logger)

	srv := server.New(orchestrator, normalizer, invoiceRepo, profileRepo, exporter, logger)
	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
