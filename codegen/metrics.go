package codegen

import (
	"github.com/c360studio/semstreams/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus counters for code emission.
type Metrics struct {
	classes  prometheus.Counter
	files    prometheus.Counter
	failures prometheus.Counter
}

// NewMetrics creates emitter metrics registered with the registry. A nil
// registry yields nil metrics, which record nothing.
func NewMetrics(registry *metric.MetricsRegistry) *Metrics {
	if registry == nil {
		return nil
	}

	m := &Metrics{
		classes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semschema_codegen_classes_generated_total",
			Help: "Classes emitted as Go source",
		}),
		files: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semschema_codegen_files_written_total",
			Help: "Generated Go files written to disk",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semschema_codegen_failures_total",
			Help: "Failed emission runs",
		}),
	}

	registry.RegisterCounter("codegen", "classes_generated_total", m.classes)
	registry.RegisterCounter("codegen", "files_written_total", m.files)
	registry.RegisterCounter("codegen", "failures_total", m.failures)

	return m
}

func (m *Metrics) recordClass(files int) {
	if m == nil {
		return
	}
	m.classes.Inc()
	m.files.Add(float64(files))
}

func (m *Metrics) recordFailure() {
	if m == nil {
		return
	}
	m.failures.Inc()
}
