package observability

import (
	"context"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key = abc , broken, x=1,=2")
	if len(got) != 2 || got["api-key"] != "abc" || got["x"] != "1" {
		t.Fatalf("unexpected headers: %v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty input should return nil")
	}
}

func TestClampRatio(t *testing.T) {
	cases := map[float64]float64{-1: 0, 0.25: 0.25, 3: 1}
	for in, want := range cases {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v): want=%v got=%v", in, want, got)
		}
	}
}

func TestLoadTracingConfig(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-team=learnup")
	t.Setenv("OTEL_SAMPLER_RATIO", "7")

	cfg := LoadTracingConfig(nil)
	if !cfg.Enabled || cfg.Endpoint != "collector:4318" || cfg.Headers["x-team"] != "learnup" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SampleRatio != 1 {
		t.Fatalf("ratio not clamped: %v", cfg.SampleRatio)
	}
}

func TestInitOTelDisabledReturnsNoopShutdown(t *testing.T) {
	shutdown, err := InitOTel(context.Background(), nil, TracingConfig{})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
	_, span := StartSpan(context.Background(), "test")
	span.End()
}
