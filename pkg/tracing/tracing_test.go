package tracing_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/stark/pkg/lifecycle"
	"github.com/JaimeStill/stark/pkg/tracing"
)

func TestConfigFinalize(t *testing.T) {
	cfg := tracing.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.Exporter != tracing.ExporterStdout || cfg.SampleRatio != 1 || cfg.ServiceName != "stark" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     tracing.Config
		wantErr string
	}{
		{"ratio above one", tracing.Config{SampleRatio: 1.5}, "sample_ratio"},
		{"otlp without endpoint", tracing.Config{Enabled: true, Exporter: "otlp"}, "endpoint required"},
		{"unknown exporter", tracing.Config{Exporter: "jaeger"}, "unsupported exporter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDisabledIsNoop(t *testing.T) {
	cfg := tracing.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	sys, err := tracing.New(context.Background(), &cfg, "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, span := sys.Tracer("test").Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Error("disabled tracer produced a recording span context")
	}
	span.End()

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := lc.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}
