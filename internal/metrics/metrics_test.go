package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestInitializeMetricsPopulatesLabels(t *testing.T) {
	InitializeMetrics()

	// Pre-populated series must exist at zero without panicking.
	if v := counterValue(t, ThumbnailCacheHits.WithLabelValues("memory")); v < 0 {
		t.Errorf("unexpected negative counter value: %v", v)
	}
	if v := counterValue(t, StorageOperationsTotal.WithLabelValues("upload", "error")); v < 0 {
		t.Errorf("unexpected negative counter value: %v", v)
	}
}

func TestCountersIncrement(t *testing.T) {
	before := counterValue(t, ThumbnailCacheMisses)
	ThumbnailCacheMisses.Inc()
	after := counterValue(t, ThumbnailCacheMisses)

	if after != before+1 {
		t.Errorf("ThumbnailCacheMisses = %v after Inc, want %v", after, before+1)
	}
}
