package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusHooks implements CommitHooks and ResizeHooks with Prometheus
// collectors registered on a private registry.
type PrometheusHooks struct {
	registry *prometheus.Registry

	commits   prometheus.Counter
	notified  prometheus.Counter
	changed   *prometheus.CounterVec
	resizes   *prometheus.CounterVec
	drags     prometheus.Counter
	dragSteps prometheus.Histogram
}

// NewPrometheusHooks creates the collectors and registers them. Each call
// uses an independent registry so it can be called more than once.
func NewPrometheusHooks() *PrometheusHooks {
	h := &PrometheusHooks{
		registry: prometheus.NewRegistry(),
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tilegrid_commits_flushed_total",
			Help: "Commits flushed to observers.",
		}),
		notified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tilegrid_observer_refreshes_total",
			Help: "Observer refresh notifications issued by commits.",
		}),
		changed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tilegrid_nodes_changed_total",
			Help: "Nodes marked changed in flushed commits, by kind.",
		}, []string{"kind"}),
		resizes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tilegrid_resize_steps_total",
			Help: "Resize steps by policy and outcome.",
		}, []string{"style", "outcome"}),
		drags: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tilegrid_drags_total",
			Help: "Drag gestures started.",
		}),
		dragSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tilegrid_drag_steps",
			Help:    "Applied resize steps per drag gesture.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}
	h.registry.MustRegister(h.commits, h.notified, h.changed, h.resizes, h.drags, h.dragSteps)
	return h
}

// Handler serves the /metrics scrape endpoint for this registry.
func (h *PrometheusHooks) Handler() http.Handler {
	return promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (h *PrometheusHooks) Registry() *prometheus.Registry { return h.registry }

func (h *PrometheusHooks) OnCommitFlush(_ string, _ int, grids, tiles, notified int) {
	h.commits.Inc()
	h.notified.Add(float64(notified))
	h.changed.WithLabelValues("grid").Add(float64(grids))
	h.changed.WithLabelValues("tile").Add(float64(tiles))
}

func (h *PrometheusHooks) OnDragStart(string, string, string, string) {
	h.drags.Inc()
}

func (h *PrometheusHooks) OnResize(_ string, style string, _ float64, applied bool) {
	outcome := "applied"
	if !applied {
		outcome = "constrained"
	}
	h.resizes.WithLabelValues(style, outcome).Inc()
}

func (h *PrometheusHooks) OnDragEnd(_ string, _ string, steps int) {
	h.dragSteps.Observe(float64(steps))
}
