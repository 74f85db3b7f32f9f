// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fleetfusion/internal/fleet"
	"fleetfusion/internal/routing"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	// Simulator metrics
	EventsEmitted    *prometheus.CounterVec
	ArbitrageActions *prometheus.CounterVec
	SimulatorsActive prometheus.Gauge
	StreamClients    prometheus.Gauge

	// Collaborator metrics
	RouteFetches      *prometheus.CounterVec
	RouteFetchLatency prometheus.Histogram
	LoginAttempts     *prometheus.CounterVec
	Exports           *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance on its own registry, which also
// carries the Go runtime and process collectors.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fleetfusion"
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "events_emitted_total",
			Help:      "Total number of agent events appended to the log by type",
		}, []string{"type"}),
		ArbitrageActions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "arbitrage_actions_total",
			Help:      "Total number of arbitrage accepts, dismissals and settlements",
		}, []string{"action"}),
		SimulatorsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "active",
			Help:      "Number of simulators with a running timeline",
		}),
		StreamClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "web",
			Name:      "stream_clients",
			Help:      "Number of connected dashboard stream clients",
		}),

		RouteFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "fetches_total",
			Help:      "Total number of route lookups by result",
		}, []string{"result"}),
		RouteFetchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "fetch_duration_seconds",
			Help:      "Route lookup latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "web",
			Name:      "login_attempts_total",
			Help:      "Total number of sign-in attempts by result",
		}, []string{"result"}),
		Exports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "web",
			Name:      "exports_total",
			Help:      "Total number of analytics exports by format",
		}, []string{"format"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// EventEmitted counts an appended agent event.
func (m *Metrics) EventEmitted(t fleet.EventType) {
	m.EventsEmitted.WithLabelValues(string(t)).Inc()
}

// ArbitrageAction counts an accept, dismiss or settle.
func (m *Metrics) ArbitrageAction(action string) {
	m.ArbitrageActions.WithLabelValues(action).Inc()
}

// SimulatorActive moves the active simulator gauge by delta.
func (m *Metrics) SimulatorActive(delta int) {
	m.SimulatorsActive.Add(float64(delta))
}

// RecordLogin counts a sign-in attempt.
func (m *Metrics) RecordLogin(ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

// RecordExport counts an analytics export.
func (m *Metrics) RecordExport(format string) {
	m.Exports.WithLabelValues(format).Inc()
}

type instrumentedFetcher struct {
	next routing.Fetcher
	m    *Metrics
}

// InstrumentFetcher wraps f so every lookup is counted and timed.
func (m *Metrics) InstrumentFetcher(f routing.Fetcher) routing.Fetcher {
	return &instrumentedFetcher{next: f, m: m}
}

func (f *instrumentedFetcher) Fetch(ctx context.Context, from, to fleet.Coordinate) ([]fleet.Coordinate, bool) {
	start := time.Now()
	coords, ok := f.next.Fetch(ctx, from, to)
	f.m.RouteFetchLatency.Observe(time.Since(start).Seconds())
	result := "miss"
	if ok {
		result = "ok"
	}
	f.m.RouteFetches.WithLabelValues(result).Inc()
	return coords, ok
}
