package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agendateonline/agendate/api"
	"github.com/agendateonline/agendate/config"
	"github.com/agendateonline/agendate/internal/app"
	"github.com/agendateonline/agendate/internal/metrics"
	"github.com/agendateonline/agendate/internal/server"
	"github.com/agendateonline/agendate/internal/telemetry"
	"github.com/agendateonline/agendate/log"
	"github.com/agendateonline/agendate/mongodb"
	"github.com/agendateonline/agendate/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv(config.ConfigFileEnv))
	if err != nil {
		stdLog := zerolog.New(os.Stdout).With().Timestamp().Logger()
		stdLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLogger := log.Setup(cfg.LogLevel, cfg.LogPretty)
	ctx := context.Background()
	appLogger.Info(ctx, "Starting agendate payments server...", log.Fields{
		"http_port":          cfg.HTTPPort,
		"http_engine":        cfg.HTTPEngine,
		"mongo_db_name":      cfg.MongoDBName,
		"credential_backend": cfg.CredentialBackend,
		"log_level":          cfg.LogLevel,
		"otel_service":       cfg.OtelServiceName,
	})

	var tracerProvider *sdktrace.TracerProvider
	if cfg.TracingEnabled {
		tracerProvider, err = tracing.InitTracerProvider(cfg.OtelServiceName, cfg.LogPretty)
		if err != nil {
			fatal(appLogger, "Failed to initialize TracerProvider", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.InitCustomMetrics(registry)
	var meterProvider *sdkmetric.MeterProvider
	if meterProvider, err = telemetry.InitMeterProvider(registry); err != nil {
		fatal(appLogger, "Failed to initialize MeterProvider", err)
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		fatal(appLogger, "Failed to initialize application", err)
	}

	httpServer := server.NewHTTPServer(cfg, appLogger, api.Handlers{
		Payments:       application.Payments,
		Webhooks:       application.Webhooks,
		Accounts:       application.Accounts,
		Health:         mongodb.Ping,
		FrontendOrigin: cfg.FrontendOrigin,
	}, registry)

	go func() {
		appLogger.Info(ctx, fmt.Sprintf("HTTP server listening on port %s", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(appLogger, "Failed to start HTTP server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit

	appLogger.Info(ctx, fmt.Sprintf("Received signal: %v. Shutting down server...", receivedSignal))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "HTTP server shutdown error", err)
	}

	application.Close(shutdownCtx)
	telemetry.Shutdown(shutdownCtx, tracerProvider, meterProvider)

	appLogger.Info(shutdownCtx, "Server gracefully stopped.")
}

func fatal(logger log.Logger, msg string, err error) {
	logger.Error(context.Background(), msg, err)
	os.Exit(1)
}
