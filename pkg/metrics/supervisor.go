package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SupervisorMetrics covers the per-tick supervisor loop: how long a tick
// took, and how many hosts were hibernating when it ran.
type SupervisorMetrics struct {
	TickDuration       prometheus.Histogram
	HibernatingHosts   prometheus.Gauge
	SuspendResumeTotal prometheus.Counter
}

// NewSupervisorMetrics registers and returns the supervisor metric set
// under namespace.
func NewSupervisorMetrics(namespace string) *SupervisorMetrics {
	return &SupervisorMetrics{
		TickDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "supervisor",
				Name:      "tick_duration_seconds",
				Help:      "Time spent evaluating all hosts in one tick.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		HibernatingHosts: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "supervisor",
				Name:      "hibernating_hosts",
				Help:      "Number of hosts currently postponing health checks.",
			},
		),
		SuspendResumeTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "supervisor",
				Name:      "suspend_resume_total",
				Help:      "Total detected process suspend/resume events.",
			},
		),
	}
}
