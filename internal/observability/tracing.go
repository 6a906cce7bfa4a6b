package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// TracingOptions selects the span exporter.
type TracingOptions struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	Exporter     string // "otlp" or "stdout"
	OTLPEndpoint string
	// Writer receives stdout spans. Defaults to os.Stdout.
	Writer io.Writer
}

// Tracing owns the process tracer provider.
type Tracing struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

// NewTracing installs a global tracer provider. When tracing is disabled a
// no-op provider is returned and nothing is exported.
func NewTracing(ctx context.Context, opts TracingOptions, logger *slog.Logger) (*Tracing, error) {
	if !opts.Enabled {
		return &Tracing{
			provider: nooptrace.NewTracerProvider(),
			shutdown: func(context.Context) error { return nil },
		}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			attribute.String("service.name", opts.ServiceName),
			attribute.String("deployment.environment", opts.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	exporter, err := newSpanExporter(ctx, opts, logger)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return &Tracing{provider: provider, shutdown: provider.Shutdown}, nil
}

// Tracer returns a named tracer from the configured provider.
func (t *Tracing) Tracer(name string) trace.Tracer {
	if t == nil || t.provider == nil {
		return otel.Tracer(name)
	}
	return t.provider.Tracer(name)
}

// Shutdown flushes pending spans.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil || t.shutdown == nil {
		return nil
	}
	return t.shutdown(ctx)
}

func newSpanExporter(ctx context.Context, opts TracingOptions, logger *slog.Logger) (sdktrace.SpanExporter, error) {
	if opts.Exporter == "otlp" {
		var otlpOpts []otlptracehttp.Option
		if endpoint := strings.TrimSpace(opts.OTLPEndpoint); endpoint != "" {
			otlpOpts = append(otlpOpts, otlptracehttp.WithEndpoint(endpoint))
		}
		if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") != "0" {
			otlpOpts = append(otlpOpts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, otlpOpts...)
		if err == nil {
			return exporter, nil
		}
		logger.Warn("failed to initialize OTLP trace exporter, falling back to stdout", slog.Any("error", err))
	}
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	return stdouttrace.New(stdouttrace.WithWriter(w))
}
