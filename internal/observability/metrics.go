package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "heat_risk"

// Metrics holds the Prometheus counters and histograms for assessment runs.
// Each Metrics owns its registry so batch runs can export a textfile and
// tests can create as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	StepsInterpolated prometheus.Counter
	StepGaps          prometheus.Counter
	UTCIUnavailable   prometheus.Counter

	PhysioRuns        *prometheus.CounterVec   // labels: outcome={ok,diverged,invalid}
	MonteCarloSamples *prometheus.CounterVec   // labels: outcome={succeeded,failed}
	StageDuration     *prometheus.HistogramVec // labels: stage={environment,physiology,monte_carlo}
	PeakRiskLevel     prometheus.Gauge
}

// NewMetrics creates all run metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		StepsInterpolated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_interpolated_total",
			Help:      "Weather steps produced by interpolation.",
		}),
		StepGaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_gaps_total",
			Help:      "Requested weather steps outside forecast coverage.",
		}),
		UTCIUnavailable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "utci_unavailable_total",
			Help:      "Steps whose UTCI inputs fell outside the validated range.",
		}),
		PhysioRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "physio_runs_total",
			Help:      "Physiological simulations by outcome.",
		}, []string{"outcome"}),
		MonteCarloSamples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monte_carlo_samples_total",
			Help:      "Monte Carlo samples by outcome.",
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent per assessment stage.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		}, []string{"stage"}),
		PeakRiskLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peak_risk_level",
			Help:      "Peak overall risk level of the last run (-1 when not assessed).",
		}),
	}

	m.Registry.MustRegister(
		m.StepsInterpolated,
		m.StepGaps,
		m.UTCIUnavailable,
		m.PhysioRuns,
		m.MonteCarloSamples,
		m.StageDuration,
		m.PeakRiskLevel,
	)

	return m
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
