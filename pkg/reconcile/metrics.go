package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the reconciler's Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "navsync").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for transition duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// DefaultMetricsConfig returns a MetricsConfig with sensible defaults.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "navsync",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus metrics the reconciler records.
//
// Metrics collected:
//   - navsync_transitions_total: Counter of transitions by outcome
//     (success, cancelled, error, skipped)
//   - navsync_transition_duration_seconds: Histogram of transition duration
//   - navsync_rollbacks_total: Counter of rollbacks by branch taken
//   - navsync_non_router_changes_total: Counter of externally initiated
//     entry changes
type Metrics struct {
	transitionsTotal      *prometheus.CounterVec
	transitionDuration    prometheus.Histogram
	rollbacksTotal        *prometheus.CounterVec
	nonRouterChangesTotal prometheus.Counter
}

// NewMetrics registers and returns the reconciler metrics.
func NewMetrics(config MetricsConfig) *Metrics {
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	if config.Buckets == nil {
		config.Buckets = prometheus.DefBuckets
	}
	if config.Namespace == "" {
		config.Namespace = "navsync"
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		transitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "transitions_total",
			Help:        "Total number of navigation transitions by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		transitionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "transition_duration_seconds",
			Help:        "Duration of navigation transitions in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		rollbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rollbacks_total",
			Help:        "Total number of rollbacks by branch taken",
			ConstLabels: config.ConstLabels,
		}, []string{"branch"}),

		nonRouterChangesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "non_router_changes_total",
			Help:        "Total number of externally initiated entry changes",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) recordOutcome(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(outcome).Inc()
	if seconds >= 0 {
		m.transitionDuration.Observe(seconds)
	}
}

func (m *Metrics) recordRollback(branch rollbackBranch) {
	if m == nil {
		return
	}
	m.rollbacksTotal.WithLabelValues(branch.String()).Inc()
}

func (m *Metrics) recordNonRouterChange() {
	if m == nil {
		return
	}
	m.nonRouterChangesTotal.Inc()
}
