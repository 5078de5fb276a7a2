package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/stark/pkg/metrics"
)

func newRegistry(t *testing.T) *metrics.Registry {
	t.Helper()
	cfg := metrics.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	return metrics.New(&cfg)
}

func scrape(t *testing.T, reg *metrics.Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestConfigFinalize(t *testing.T) {
	cfg := metrics.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.Path != "/metrics" || cfg.Namespace != "stark" {
		t.Errorf("defaults = %+v", cfg)
	}

	bad := metrics.Config{Path: "metrics"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected error for relative path")
	}
}

func TestInstrument(t *testing.T) {
	reg := newRegistry(t)

	handler := reg.Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/placements/550e8400-e29b-41d4-a716-446655440000", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	body := scrape(t, reg)
	want := `stark_http_requests_total{method="POST",route="/api/placements",status="201"} 1`
	if !strings.Contains(body, want) {
		t.Errorf("missing %q in scrape output", want)
	}
}

func TestCounter(t *testing.T) {
	reg := newRegistry(t)
	c := reg.Counter("certificates_classified_total", "Certificates classified by kind.", "kind")

	c.Inc("2021-B9-KLIN")
	c.Inc("2021-B9-KLIN")

	body := scrape(t, reg)
	want := `stark_certificates_classified_total{kind="2021-B9-KLIN"} 2`
	if !strings.Contains(body, want) {
		t.Errorf("missing %q in scrape output", want)
	}
}

func TestNilCounterIsNoop(t *testing.T) {
	var c *metrics.Counter
	c.Inc("anything")
}
