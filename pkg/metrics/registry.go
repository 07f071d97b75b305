// Package metrics provides centralized Prometheus metrics management for
// the health evaluation daemon.
//
// This package follows the naming convention:
// <namespace>_<category>_<metric_name>_<unit>
//
// Example:
//
//	registry := metrics.DefaultRegistry()
//	registry.Engine().TransitionsTotal.WithLabelValues("WARNING").Inc()
package metrics

import "sync"

// MetricCategory identifies a group of related metrics.
type MetricCategory string

const (
	// CategoryEngine covers the evaluation/transition/dispatch pipeline.
	CategoryEngine MetricCategory = "engine"
	// CategorySupervisor covers the per-tick supervisor loop itself.
	CategorySupervisor MetricCategory = "supervisor"
)

// MetricsRegistry is the central registry for healthd's Prometheus
// metrics, organized by category and lazily initialized on first access.
type MetricsRegistry struct {
	namespace string

	engine     *EngineMetrics
	supervisor *SupervisorMetrics

	engineOnce     sync.Once
	supervisorOnce sync.Once
}

var (
	defaultRegistry     *MetricsRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the global singleton MetricsRegistry, safe for
// concurrent use and initialized once on first call.
func DefaultRegistry() *MetricsRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewMetricsRegistry("healthd")
	})
	return defaultRegistry
}

// NewMetricsRegistry creates a new MetricsRegistry under namespace. Most
// callers should use DefaultRegistry instead.
func NewMetricsRegistry(namespace string) *MetricsRegistry {
	if namespace == "" {
		namespace = "healthd"
	}
	return &MetricsRegistry{namespace: namespace}
}

// Engine returns the evaluation-pipeline metrics manager, lazy-initialized
// on first access.
func (r *MetricsRegistry) Engine() *EngineMetrics {
	r.engineOnce.Do(func() {
		r.engine = NewEngineMetrics(r.namespace)
	})
	return r.engine
}

// Supervisor returns the tick-loop metrics manager, lazy-initialized on
// first access.
func (r *MetricsRegistry) Supervisor() *SupervisorMetrics {
	r.supervisorOnce.Do(func() {
		r.supervisor = NewSupervisorMetrics(r.namespace)
	})
	return r.supervisor
}

// Namespace returns the configured Prometheus namespace.
func (r *MetricsRegistry) Namespace() string {
	return r.namespace
}
