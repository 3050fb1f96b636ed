// Package observability exposes Prometheus metrics for the responder.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the trigger subsystem.
// A nil *Metrics is valid; all methods are no-ops on it, so components can be
// wired without metrics in tests.
type Metrics struct {
	responsesTotal prometheus.Counter
	reloadsTotal   *prometheus.CounterVec
	rulesLoaded    prometheus.Gauge
}

// NewMetrics creates and registers the collectors. A nil registerer falls
// back to the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		responsesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "trigger_responses_total", Help: "Total auto-responses sent"},
		),
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trigger_reloads_total", Help: "Total rule cache reloads by result"},
			[]string{"result"},
		),
		rulesLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "trigger_rules_loaded", Help: "Number of rules in the current snapshot"},
		),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.responsesTotal, m.reloadsTotal, m.rulesLoaded)

	return m
}

// Handler returns an HTTP handler serving the given registry, or the default
// registry when reg is nil.
func Handler(reg *prometheus.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ObserveResponse records one auto-response sent.
func (m *Metrics) ObserveResponse() {
	if m == nil {
		return
	}
	m.responsesTotal.Inc()
}

// ObserveReload records the outcome of a cache reload. On success the loaded
// rule count is published as a gauge.
func (m *Metrics) ObserveReload(err error, rules int) {
	if m == nil {
		return
	}
	if err != nil {
		m.reloadsTotal.WithLabelValues("error").Inc()
		return
	}
	m.reloadsTotal.WithLabelValues("ok").Inc()
	m.rulesLoaded.Set(float64(rules))
}
