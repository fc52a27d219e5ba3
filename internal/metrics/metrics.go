// Package metrics exposes render pipeline and graph model counters to
// Prometheus. Every Collector method is safe to call on a nil receiver so
// components can be built without metrics in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Render outcomes used as the "outcome" label.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// Collector holds the application's Prometheus metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	Renders        *prometheus.CounterVec
	RenderDuration prometheus.Histogram
	RenderEvents   prometheus.Counter
	Vertices       prometheus.Gauge
	EnabledEdges   prometheus.Gauge
}

// NewCollector creates and registers all metrics under namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		Renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renders_total",
				Help:      "Total number of finished render tasks by outcome",
			},
			[]string{"outcome"},
		),
		RenderDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Wall time of render tasks, including cancelled ones",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		RenderEvents: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "render_events_total",
				Help:      "Total number of enabled-edge change events received by the scheduler",
			},
		),
		Vertices: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "vertices",
				Help:      "Number of live vertices",
			},
		),
		EnabledEdges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "enabled_edges",
				Help:      "Number of enabled edges in the latest snapshot",
			},
		),
	}

	registry.MustRegister(
		c.Renders,
		c.RenderDuration,
		c.RenderEvents,
		c.Vertices,
		c.EnabledEdges,
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRender records a finished render task.
func (c *Collector) ObserveRender(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Renders.WithLabelValues(outcome).Inc()
	c.RenderDuration.Observe(elapsed.Seconds())
}

// ObserveEvent records a change event reaching the scheduler.
func (c *Collector) ObserveEvent() {
	if c == nil {
		return
	}
	c.RenderEvents.Inc()
}

// ObserveGraph records the size of the latest model snapshot.
func (c *Collector) ObserveGraph(vertices, enabledEdges int) {
	if c == nil {
		return
	}
	c.Vertices.Set(float64(vertices))
	c.EnabledEdges.Set(float64(enabledEdges))
}
