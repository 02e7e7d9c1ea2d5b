package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("funcreg")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartImportSpan starts a span covering one ImportModules call.
	StartImportSpan(ctx context.Context, specs []string) (context.Context, trace.Span)

	// StartModuleSpan starts a span for resolving a single module spec.
	// It should be a child of the import span.
	StartModuleSpan(ctx context.Context, spec string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func (m *otelSpanManager) StartImportSpan(ctx context.Context, specs []string) (context.Context, trace.Span) {
	return StartImportSpan(ctx, specs)
}

func (m *otelSpanManager) StartModuleSpan(ctx context.Context, spec string) (context.Context, trace.Span) {
	return StartModuleSpan(ctx, spec)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// StartImportSpan starts a span for an ImportModules call.
// Uses the global OTel tracer.
func StartImportSpan(ctx context.Context, specs []string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "funcreg.import",
		trace.WithAttributes(
			attribute.StringSlice("module.specs", specs),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartModuleSpan starts a span for resolving one module spec.
// Uses the global OTel tracer.
func StartModuleSpan(ctx context.Context, spec string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "funcreg.module",
		trace.WithAttributes(
			attribute.String("module.spec", spec),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
