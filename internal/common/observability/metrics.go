package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records per-update metrics through OpenTelemetry and exposes
// them on the Prometheus registry.
type Observability struct {
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	updateCounter  otelmetric.Int64Counter
	updateDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	updateCounter, _ := meter.Int64Counter(
		"updates.processed",
		otelmetric.WithDescription("Number of chat updates processed"),
	)

	updateDuration, _ := meter.Float64Histogram(
		"updates.duration",
		otelmetric.WithDescription("Chat update processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:  provider,
		meter:          meter,
		updateCounter:  updateCounter,
		updateDuration: updateDuration,
	}
}

// RecordUpdate counts one processed update of the given kind and its outcome.
func (o *Observability) RecordUpdate(ctx context.Context, kind, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	)
	if o.updateCounter != nil {
		o.updateCounter.Add(ctx, 1, attrs)
	}
	if o.updateDuration != nil {
		o.updateDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
