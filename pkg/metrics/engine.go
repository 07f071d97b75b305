package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EngineMetrics covers the evaluation/transition/dispatch pipeline: one
// alarm transition, one dispatcher decision, one log append at a time.
type EngineMetrics struct {
	TransitionsTotal   *prometheus.CounterVec
	DispatchTotal      *prometheus.CounterVec
	NotifierFailures   prometheus.Counter
	AlarmLogSize       prometheus.Gauge
	AlarmLogEvictions  prometheus.Counter
}

// NewEngineMetrics registers and returns the engine metric set under
// namespace.
func NewEngineMetrics(namespace string) *EngineMetrics {
	return &EngineMetrics{
		TransitionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "transitions_total",
				Help:      "Total alarm status transitions, labeled by new status.",
			},
			[]string{"status"},
		),
		DispatchTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "dispatch_total",
				Help:      "Total dispatcher decisions, labeled by outcome.",
			},
			[]string{"outcome"},
		),
		NotifierFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "notifier_failures_total",
				Help:      "Total notifier invocations that returned an error or nonzero exit code.",
			},
		),
		AlarmLogSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "alarm_log_size",
				Help:      "Current number of retained alarm log entries.",
			},
		),
		AlarmLogEvictions: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "alarm_log_evictions_total",
				Help:      "Total alarm log entries evicted once the bounded log filled up.",
			},
		),
	}
}
