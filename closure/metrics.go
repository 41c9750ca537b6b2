package closure

import (
	"github.com/c360studio/semstreams/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus counters for closure builds.
type Metrics struct {
	transferred prometheus.Counter
	inferred    *prometheus.CounterVec
	components  prometheus.Counter
	merged      prometheus.Counter
	failures    *prometheus.CounterVec
}

// NewMetrics creates closure metrics registered with the registry. A nil
// registry yields nil metrics, which record nothing.
func NewMetrics(registry *metric.MetricsRegistry) *Metrics {
	if registry == nil {
		return nil
	}

	m := &Metrics{
		transferred: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semschema_closure_statements_transferred_total",
			Help: "Statements copied from raw graphs into the schema store",
		}),
		inferred: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "semschema_closure_statements_inferred_total",
			Help: "Statements inserted by closure rules",
		}, []string{"rule"}),
		components: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semschema_closure_components_normalized_total",
			Help: "Equivalence components collapsed into a representative",
		}),
		merged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semschema_closure_classes_merged_total",
			Help: "Classes merged away during normalization",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "semschema_closure_build_failures_total",
			Help: "Failed closure builds by stage",
		}, []string{"stage"}),
	}

	registry.RegisterCounter("closure", "statements_transferred_total", m.transferred)
	registry.RegisterCounterVec("closure", "statements_inferred_total", m.inferred)
	registry.RegisterCounter("closure", "components_normalized_total", m.components)
	registry.RegisterCounter("closure", "classes_merged_total", m.merged)
	registry.RegisterCounterVec("closure", "build_failures_total", m.failures)

	return m
}

func (m *Metrics) recordTransferred(n int) {
	if m == nil {
		return
	}
	m.transferred.Add(float64(n))
}

func (m *Metrics) recordInferred(rule string, n int) {
	if m == nil {
		return
	}
	m.inferred.WithLabelValues(rule).Add(float64(n))
}

func (m *Metrics) recordNormalized(components, merged int) {
	if m == nil {
		return
	}
	m.components.Add(float64(components))
	m.merged.Add(float64(merged))
}

func (m *Metrics) recordFailure(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage).Inc()
}
