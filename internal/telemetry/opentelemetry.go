package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	prometheusexporter "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

const meterName = "github.com/agendateonline/agendate"

// InitMeterProvider initializes the OpenTelemetry meter provider with a Prometheus exporter.
func InitMeterProvider(reg prometheus.Registerer) (*metric.MeterProvider, error) {
	exporter, err := prometheusexporter.New(prometheusexporter.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}

	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	log.Info().Msg("OpenTelemetry MeterProvider initialized with Prometheus exporter")
	return mp, nil
}

var (
	providerOnce     sync.Once
	providerDuration otelmetric.Float64Histogram
)

// RecordProviderCall records the latency of one Mercado Pago API call. Until
// InitMeterProvider runs the global provider is a no-op.
func RecordProviderCall(ctx context.Context, operation string, status int, elapsed time.Duration) {
	providerOnce.Do(func() {
		h, err := otel.Meter(meterName).Float64Histogram(
			"mercadopago.request.duration",
			otelmetric.WithUnit("s"),
			otelmetric.WithDescription("Duration of Mercado Pago API requests"),
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to create provider latency histogram")
			return
		}
		providerDuration = h
	})
	if providerDuration == nil {
		return
	}
	providerDuration.Record(ctx, elapsed.Seconds(), otelmetric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Int("status", status),
	))
}

// Shutdown gracefully shuts down the tracer and meter providers.
func Shutdown(ctx context.Context, tp *trace.TracerProvider, mp *metric.MeterProvider) {
	if tp != nil {
		if err := tp.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Error shutting down OpenTelemetry TracerProvider")
		}
	}
	if mp != nil {
		if err := mp.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Error shutting down OpenTelemetry MeterProvider")
		}
	}
}
