package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
	outcomeBusy    = "busy"
)

// Metrics holds Prometheus metrics for analysis runs.
type Metrics struct {
	Runs     *prometheus.CounterVec // by outcome: success, error, busy
	Duration prometheus.Histogram
	Busy     prometheus.Gauge
	Scores   *prometheus.GaugeVec // latest score by subject
}

// NewMetrics registers analysis metrics on reg for variant.
func NewMetrics(reg prometheus.Registerer, variant string) *Metrics {
	labels := prometheus.Labels{"variant": variant}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "faultline_analysis_runs_total",
		Help:        "Analysis runs by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "faultline_analysis_run_duration_seconds",
		Help:        "Wall time of completed analysis runs",
		ConstLabels: labels,
		Buckets:     prometheus.DefBuckets,
	})

	busy := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "faultline_analysis_busy",
		Help:        "1 while an analysis run is in flight",
		ConstLabels: labels,
	})

	scores := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "faultline_subject_score",
		Help:        "Score of each subject in the latest snapshot",
		ConstLabels: labels,
	}, []string{"subject", "status"})

	reg.MustRegister(runs)
	reg.MustRegister(duration)
	reg.MustRegister(busy)
	reg.MustRegister(scores)

	return &Metrics{
		Runs:     runs,
		Duration: duration,
		Busy:     busy,
		Scores:   scores,
	}
}

func (m *Metrics) setBusy(busy bool) {
	if m == nil {
		return
	}
	if busy {
		m.Busy.Set(1)
	} else {
		m.Busy.Set(0)
	}
}

func (m *Metrics) observeRun(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
	if seconds >= 0 {
		m.Duration.Observe(seconds)
	}
}

func (m *Metrics) publish(snap *Snapshot) {
	if m == nil {
		return
	}
	m.Scores.Reset()
	for _, s := range snap.Subjects {
		r := snap.Results[s.ID]
		m.Scores.WithLabelValues(s.ID, string(r.Status)).Set(r.Score)
	}
}
