package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records registry metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordRegister records a registration attempt; err is non-nil when the
	// registration was rejected.
	RecordRegister(ctx context.Context, typeKey string, err error)

	// RecordUnregister records an unregistration and whether anything was removed.
	RecordUnregister(ctx context.Context, typeKey string, removed bool)

	// RecordMerge records a registry merge with the number of handlers merged in.
	RecordMerge(ctx context.Context, handlers int)

	// RecordImport records one module spec resolution.
	RecordImport(ctx context.Context, spec string, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	registrations  metric.Int64Counter
	rejections     metric.Int64Counter
	removals       metric.Int64Counter
	mergedHandlers metric.Int64Counter
	imports        metric.Int64Counter
	importErrors   metric.Int64Counter
	importLatency  metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("funcreg")

	registrations, err := meter.Int64Counter("funcreg.handler.registrations",
		metric.WithDescription("Number of successful handler registrations"),
	)
	if err != nil {
		return nil, err
	}

	rejections, err := meter.Int64Counter("funcreg.handler.rejections",
		metric.WithDescription("Number of rejected registrations (name conflicts and unnamed handlers)"),
	)
	if err != nil {
		return nil, err
	}

	removals, err := meter.Int64Counter("funcreg.handler.removals",
		metric.WithDescription("Number of handlers removed by unregister"),
	)
	if err != nil {
		return nil, err
	}

	mergedHandlers, err := meter.Int64Counter("funcreg.registry.merged_handlers",
		metric.WithDescription("Number of handlers merged from other registries"),
	)
	if err != nil {
		return nil, err
	}

	imports, err := meter.Int64Counter("funcreg.module.imports",
		metric.WithDescription("Number of module specs resolved"),
	)
	if err != nil {
		return nil, err
	}

	importErrors, err := meter.Int64Counter("funcreg.module.import_errors",
		metric.WithDescription("Number of module specs that failed to resolve"),
	)
	if err != nil {
		return nil, err
	}

	importLatency, err := meter.Float64Histogram("funcreg.module.import_latency_ms",
		metric.WithDescription("Module resolution and merge latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		registrations:  registrations,
		rejections:     rejections,
		removals:       removals,
		mergedHandlers: mergedHandlers,
		imports:        imports,
		importErrors:   importErrors,
		importLatency:  importLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordRegister records a registration attempt.
func (m *otelMetrics) RecordRegister(ctx context.Context, typeKey string, err error) {
	attrs := metric.WithAttributes(attribute.String("type_key", typeKey))
	if err != nil {
		m.rejections.Add(ctx, 1, attrs)
		return
	}
	m.registrations.Add(ctx, 1, attrs)
}

// RecordUnregister records an unregistration.
func (m *otelMetrics) RecordUnregister(ctx context.Context, typeKey string, removed bool) {
	if !removed {
		return
	}
	m.removals.Add(ctx, 1, metric.WithAttributes(attribute.String("type_key", typeKey)))
}

// RecordMerge records a registry merge.
func (m *otelMetrics) RecordMerge(ctx context.Context, handlers int) {
	m.mergedHandlers.Add(ctx, int64(handlers))
}

// RecordImport records one module spec resolution.
func (m *otelMetrics) RecordImport(ctx context.Context, spec string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("spec", spec),
		attribute.Bool("success", err == nil),
	}
	m.imports.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.importLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		m.importErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("spec", spec)))
	}
}
