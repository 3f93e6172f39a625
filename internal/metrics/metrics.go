package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/synheart/synheart-bpsim/internal/models"
	"github.com/synheart/synheart-bpsim/internal/rules"
)

const namespace = "bpsim"

// Metrics holds the collectors exported by a simulation or stream run.
// Each instance owns its registry so tests and concurrent runs stay isolated.
type Metrics struct {
	registry *prometheus.Registry

	measurements *prometheus.CounterVec
	lastSBP      prometheus.Gauge
	lastDBP      prometheus.Gauge
	simHour      prometheus.Gauge
	verdicts     *prometheus.CounterVec
	dropped      prometheus.Counter
	clients      *prometheus.GaugeVec
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		measurements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurements_total",
			Help:      "Simulated measurements by latent patient state.",
		}, []string{"state"}),
		lastSBP: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_sbp_mmhg",
			Help:      "Systolic value of the most recent measured reading.",
		}),
		lastDBP: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_dbp_mmhg",
			Help:      "Diastolic value of the most recent measured reading.",
		}),
		simHour: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulated_hour",
			Help:      "Simulated time of the most recent reading.",
		}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_verdicts_total",
			Help:      "Rule verdicts by rule and outcome.",
		}, []string{"rule", "verdict"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatcher_dropped_total",
			Help:      "Readings dropped because a subscriber buffer was full.",
		}),
		clients: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Connected stream clients by transport.",
		}, []string{"transport"}),
	}

	m.registry.MustRegister(
		m.measurements,
		m.lastSBP,
		m.lastDBP,
		m.simHour,
		m.verdicts,
		m.dropped,
		m.clients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveReading records a simulated reading
func (m *Metrics) ObserveReading(r models.Reading) {
	m.measurements.WithLabelValues(string(r.State)).Inc()
	m.simHour.Set(r.Hour)
	if r.Measurement.HasSBP() {
		m.lastSBP.Set(float64(r.Measurement.SBP))
	}
	if r.Measurement.HasDBP() {
		m.lastDBP.Set(float64(r.Measurement.DBP))
	}
}

// ObserveVerdicts records every accepted and rejected verdict
func (m *Metrics) ObserveVerdicts(v *rules.Verdicts) {
	for i, name := range v.Rules {
		rejected := v.Rejected(name)
		accepted := len(v.Matrix[i]) - rejected
		m.verdicts.WithLabelValues(name, "accepted").Add(float64(accepted))
		m.verdicts.WithLabelValues(name, "rejected").Add(float64(rejected))
	}
}

// ObserveVerdict records a single verdict
func (m *Metrics) ObserveVerdict(rule string, accepted bool) {
	verdict := "rejected"
	if accepted {
		verdict = "accepted"
	}
	m.verdicts.WithLabelValues(rule, verdict).Inc()
}

// AddDropped records readings dropped by the dispatcher
func (m *Metrics) AddDropped(n int) {
	m.dropped.Add(float64(n))
}

// SetClients records the connected client count of a transport
func (m *Metrics) SetClients(transport string, n int) {
	m.clients.WithLabelValues(transport).Set(float64(n))
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the Prometheus text format, as
// read by node_exporter's textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
