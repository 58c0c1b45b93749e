package reconcile

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/navsync/pkg/history"
	"github.com/vango-dev/navsync/pkg/transition"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsRecordTransitionOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := DefaultMetricsConfig()
	cfg.Registry = reg
	metrics := NewMetrics(cfg)

	nav := history.NewMemoryNavigation("/", nil)
	r := newTestReconciler(t, Config{Navigation: nav, Metrics: metrics})

	// Success.
	tr := startTransition(t, r, "/a", transition.Extras{})
	recognize(t, r, tr, "/a")
	activate(t, r, tr, "/a")
	r.HandleRouterEvent(transition.End{T: tr})

	// Guard rejection before any native navigation.
	tr2 := startTransition(t, r, "/b", transition.Extras{})
	r.HandleRouterEvent(transition.Cancel{T: tr2, Code: transition.CancelGuardRejected})

	// External entry change without router involvement.
	if err := nav.Back(); err != nil {
		t.Fatalf("Back(): %v", err)
	}

	if got := metricCounterValue(t, metrics.transitionsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("transitions_total(success) = %v, want 1", got)
	}
	if got := metricCounterValue(t, metrics.transitionsTotal.WithLabelValues("cancelled")); got != 1 {
		t.Errorf("transitions_total(cancelled) = %v, want 1", got)
	}
	if got := metricCounterValue(t, metrics.rollbacksTotal.WithLabelValues("no_navigation")); got != 1 {
		t.Errorf("rollbacks_total(no_navigation) = %v, want 1", got)
	}
	if got := metricCounterValue(t, metrics.nonRouterChangesTotal); got != 1 {
		t.Errorf("non_router_changes_total = %v, want 1", got)
	}
	if got := metricHistogramCount(t, metrics.transitionDuration); got != 2 {
		t.Errorf("transition_duration_seconds sample count = %v, want 2", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.recordOutcome("success", 0.1)
	m.recordRollback(noNavigationOccurred)
	m.recordNonRouterChange()
}
