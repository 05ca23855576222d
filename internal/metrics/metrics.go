// Package metrics exposes executor counters on a dedicated Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mattjoyce/biobridge/internal/command"
)

const metricPrefix = "biobridge_"

const (
	CycleSuccess = "success"
	CycleError   = "error"
	CycleEmpty   = "empty"
)

// Metrics owns the collectors. The zero value is not usable; call New.
type Metrics struct {
	registry *prometheus.Registry

	commands       *prometheus.CounterVec
	commandLatency *prometheus.HistogramVec
	wakeSignals    *prometheus.CounterVec
	fetchCycles    *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	backendRetries *prometheus.CounterVec
	reportFailures prometheus.Counter
}

// New builds and registers every collector, plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "commands_total",
				Help: "Total dispatched commands by kind and result",
			},
			[]string{"kind", "result"},
		),
		commandLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "command_duration_seconds",
				Help:    "Command execution latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		wakeSignals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "wake_signals_total",
				Help: "Total wake signals by source",
			},
			[]string{"source"},
		),
		fetchCycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "fetch_cycles_total",
				Help: "Total fetch cycles by result",
			},
			[]string{"result"},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "cycle_duration_seconds",
				Help:    "Fetch cycle duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
			},
		),
		backendRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "backend_retries_total",
				Help: "Total retried durable backend calls by operation",
			},
			[]string{"operation"},
		),
		reportFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "status_report_failures_total",
				Help: "Total status reports the backend did not accept",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.commands,
		m.commandLatency,
		m.wakeSignals,
		m.fetchCycles,
		m.cycleDuration,
		m.backendRetries,
		m.reportFailures,
	)
	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveCommand records one dispatched command.
func (m *Metrics) ObserveCommand(kind command.Kind, result command.Result, elapsed time.Duration) {
	m.commands.WithLabelValues(string(kind), string(result)).Inc()
	m.commandLatency.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// WakeSignal counts a trigger from source ("realtime", "schedule", "api", "startup").
func (m *Metrics) WakeSignal(source string) {
	m.wakeSignals.WithLabelValues(source).Inc()
}

// FetchCycle records a finished cycle.
func (m *Metrics) FetchCycle(result string, elapsed time.Duration) {
	m.fetchCycles.WithLabelValues(result).Inc()
	m.cycleDuration.Observe(elapsed.Seconds())
}

// BackendRetry counts one retry of a durable backend operation. Its signature
// matches backend.Options.OnRetry.
func (m *Metrics) BackendRetry(operation string, _ int, _ error) {
	m.backendRetries.WithLabelValues(operation).Inc()
}

// StatusReportFailure counts a status report that could not be delivered.
func (m *Metrics) StatusReportFailure() {
	m.reportFailures.Inc()
}
