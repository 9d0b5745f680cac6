package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the global tracer used for the application.
var Tracer trace.Tracer = otel.Tracer("vidtube-api")

// TracingConfig holds configuration for initializing the tracer.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	Exporter       string // "stdout" or "otlp"
	OTLPEndpoint   string
	SamplerRatio   float64
}

// InitTracing installs the global tracer provider and returns its shutdown function.
func InitTracing(cfg TracingConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		Tracer = otel.Tracer(cfg.ServiceName)
		return func(context.Context) error { return nil }, nil
	}

	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.Exporter {
	case "otlp":
		exporter, err = otlptracehttp.New(context.Background(),
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	default:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create tracing exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplerRatio))
	if cfg.SamplerRatio >= 1.0 {
		sampler = sdktrace.AlwaysSample()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	Tracer = tp.Tracer(cfg.ServiceName)

	return tp.Shutdown, nil
}

// StartRepositorySpan starts an internal span around a repository read composition.
func StartRepositorySpan(ctx context.Context, method, table string) (context.Context, trace.Span) {
	ctx, span := Tracer.Start(ctx, "repository."+method, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(
		attribute.String("db.operation", method),
		attribute.String("db.table", table),
	)
	return ctx, span
}

// StartStorageSpan starts a client span around an object storage call.
func StartStorageSpan(ctx context.Context, driver, folder string) (context.Context, trace.Span) {
	ctx, span := Tracer.Start(ctx, "storage.upload", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("storage.driver", driver),
		attribute.String("storage.folder", folder),
	)
	return ctx, span
}
