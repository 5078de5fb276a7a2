// Package tracing wires an OpenTelemetry tracer provider into the service lifecycle.
package tracing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/JaimeStill/stark/pkg/lifecycle"
)

// System hands out tracers and flushes pending spans on shutdown.
type System interface {
	// Tracer returns a named tracer. Disabled systems return a no-op tracer.
	Tracer(name string) trace.Tracer
	// Start registers a shutdown hook that flushes and stops the provider.
	Start(lc *lifecycle.Coordinator) error
}

type tracing struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
	logger   *slog.Logger
}

// New builds the tracer provider described by cfg. A disabled config yields
// a no-op provider so callers can create spans unconditionally.
func New(ctx context.Context, cfg *Config, version string, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "tracing")

	if !cfg.Enabled {
		return &tracing{provider: noop.NewTracerProvider(), logger: logger}, nil
	}

	exporter, err := newExporter(ctx, cfg, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", cfg.Exporter, err)
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		logger.Warn("tracing resource init failed", "error", err)
		res = resource.Default()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("tracing initialized", "exporter", cfg.Exporter, "sample_ratio", cfg.SampleRatio)

	return &tracing{
		provider: tp,
		shutdown: tp.Shutdown,
		logger:   logger,
	}, nil
}

func (t *tracing) Tracer(name string) trace.Tracer {
	return t.provider.Tracer(name)
}

func (t *tracing) Start(lc *lifecycle.Coordinator) error {
	if t.shutdown == nil {
		return nil
	}

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := t.shutdown(ctx); err != nil {
			t.logger.Error("tracing shutdown failed", "error", err)
			return
		}
		t.logger.Info("tracing flushed")
	})

	return nil
}

func newExporter(ctx context.Context, cfg *Config, out io.Writer) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case ExporterOTLP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return stdouttrace.New(stdouttrace.WithWriter(out))
	}
}
