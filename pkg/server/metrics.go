package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the server's Prometheus collectors.
type Metrics struct {
	registry       *prometheus.Registry
	renderDuration *prometheus.HistogramVec
	renderErrors   *prometheus.CounterVec
	cacheRequests  *prometheus.CounterVec
	actions        *prometheus.CounterVec
	reloads        *prometheus.CounterVec
}

// NewMetrics registers the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reqdoc_render_duration_seconds",
				Help:    "Duration of screen renders",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"screen", "format"},
		),
		renderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqdoc_render_errors_total",
				Help: "Total number of failed screen renders",
			},
			[]string{"screen"},
		),
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqdoc_page_cache_requests_total",
				Help: "Page cache lookups by result",
			},
			[]string{"result"},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqdoc_actions_total",
				Help: "Document editing actions by name and outcome",
			},
			[]string{"action", "outcome"},
		),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqdoc_project_reloads_total",
				Help: "Project reloads by outcome",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(m.renderDuration, m.renderErrors, m.cacheRequests, m.actions, m.reloads)
	return m
}

// Handler serves the collected metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, e.g. to add process collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeRender(screen, format string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.renderDuration.WithLabelValues(screen, format).Observe(time.Since(started).Seconds())
	if err != nil {
		m.renderErrors.WithLabelValues(screen).Inc()
	}
}

func (m *Metrics) cacheResult(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) action(name string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.actions.WithLabelValues(name, outcome).Inc()
}

// Reloaded records a project reload.
func (m *Metrics) Reloaded(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.reloads.WithLabelValues(outcome).Inc()
}
