package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetricsRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	ctx := context.Background()

	rec.Observe(ctx, "seat.execute.sales", true, 2*time.Millisecond)
	rec.Observe(ctx, "seat.execute.sales", true, time.Millisecond)
	rec.Observe(ctx, "seat.execute.sales", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond) // ignored

	if got := testutil.ToFloat64(rec.results.WithLabelValues("seat.execute.sales", "success")); got != 2 {
		t.Fatalf("unexpected success count: %v", got)
	}
	if got := testutil.ToFloat64(rec.results.WithLabelValues("seat.execute.sales", "error")); got != 1 {
		t.Fatalf("unexpected error count: %v", got)
	}
	if got := testutil.CollectAndCount(rec.durations); got != 1 {
		t.Fatalf("expected one duration series, got %d", got)
	}
}

func TestPrometheusMetricsRecorderRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMetricsRecorder(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
