// internal/common/observability/metrics.go
package observability

import (
	"context"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records batch-level measurements through an OpenTelemetry
// meter exported to a Prometheus registerer.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	batchCounter  otelmetric.Int64Counter
	batchDuration otelmetric.Float64Histogram
}

func New(serviceName string, registerer promclient.Registerer) (*Observability, error) {
	exporter, err := prometheus.New(prometheus.WithRegisterer(registerer))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	meter := provider.Meter(serviceName)

	batchCounter, err := meter.Int64Counter(
		"batch.processed",
		otelmetric.WithDescription("Number of submissions processed per batch outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create batch counter: %w", err)
	}

	batchDuration, err := meter.Float64Histogram(
		"batch.duration",
		otelmetric.WithDescription("Batch processing duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create batch duration: %w", err)
	}

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		batchCounter:  batchCounter,
		batchDuration: batchDuration,
	}, nil
}

// RecordSubmission counts one submission by status.
func (o *Observability) RecordSubmission(ctx context.Context, status string) {
	if o == nil || o.batchCounter == nil {
		return
	}
	o.batchCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) RecordBatchDuration(ctx context.Context, duration time.Duration, dryRun bool) {
	if o == nil || o.batchDuration == nil {
		return
	}
	o.batchDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.Bool("dry_run", dryRun),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
