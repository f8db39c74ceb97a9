// Package metrics exposes prometheus collectors for engine operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "juniortour"

// Metrics records operation outcomes.
type Metrics struct {
	attempts      *prometheus.CounterVec
	failures      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	finalizations prometheus.Counter
	degraded      prometheus.Counter
	entries       prometheus.Counter
}

// New registers the collectors on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_attempts_total",
			Help:      "Engine operations started.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Engine operations that returned an error, by error class.",
		}, []string{"operation", "class"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Engine operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		finalizations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_finalized_total",
			Help:      "Player rounds moved to finalized.",
		}),
		degraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finalize_side_effect_failures_total",
			Help:      "Finalizations whose render or notify step failed.",
		}),
		entries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hole_entries_total",
			Help:      "Accepted hole entry submissions.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.failures, m.duration, m.finalizations, m.degraded, m.entries)
	}
	return m
}

func (m *Metrics) Attempt(op string) { m.attempts.WithLabelValues(op).Inc() }

func (m *Metrics) Failure(op, class string) { m.failures.WithLabelValues(op, class).Inc() }

func (m *Metrics) Duration(op string, d time.Duration) {
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) Finalized() { m.finalizations.Inc() }

func (m *Metrics) Degraded() { m.degraded.Inc() }

func (m *Metrics) HoleEntry() { m.entries.Inc() }
