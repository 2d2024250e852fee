// Package metrics exposes prometheus instruments for vehicle updates and control actions.
//
// All methods accept a nil *Metrics and do nothing, so callers that do not export metrics need
// not guard each observation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "carnet"

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	fetches        *prometheus.CounterVec
	updateDuration prometheus.Histogram
	actions        *prometheus.CounterVec
	pollAttempts   *prometheus.CounterVec
	remaining      *prometheus.GaugeVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetches_total",
				Help:      "Backend fetches by document section and result.",
			},
			[]string{"section", "result"},
		),
		updateDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "update_duration_seconds",
				Help:      "Duration of a full vehicle update cycle.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Control actions by topic and terminal status.",
			},
			[]string{"topic", "status"},
		),
		pollAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "poll_attempts_total",
				Help:      "Status polls issued while waiting for an action to complete.",
			},
			[]string{"kind"},
		),
		remaining: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_remaining",
				Help:      "Remaining backend request quota as last reported per vehicle.",
			},
			[]string{"vin"},
		),
	}
	m.registry.MustRegister(
		m.fetches,
		m.updateDuration,
		m.actions,
		m.pollAttempts,
		m.remaining,
		prometheus.NewGoCollector(),
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveFetch(section string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(section, result).Inc()
}

func (m *Metrics) ObserveUpdate(d time.Duration) {
	if m == nil {
		return
	}
	m.updateDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveAction(topic, status string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(topic, status).Inc()
}

// ObservePoll counts one poll of the given kind ("request" or "refresh").
func (m *Metrics) ObservePoll(kind string) {
	if m == nil {
		return
	}
	m.pollAttempts.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetRemaining(vin string, remaining int) {
	if m == nil {
		return
	}
	m.remaining.WithLabelValues(vin).Set(float64(remaining))
}
