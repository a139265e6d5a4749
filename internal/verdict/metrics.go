package verdict

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts verdict calls by outcome.
type Metrics struct {
	Requests *prometheus.CounterVec // by outcome: model, fallback, cached
	Duration prometheus.Histogram
}

// NewMetrics registers verdict metrics on reg for the named generator.
func NewMetrics(reg prometheus.Registerer, generator string) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "faultline_verdict_requests_total",
		Help:        "Verdict lookups by outcome",
		ConstLabels: prometheus.Labels{"generator": generator},
	}, []string{"outcome"})

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "faultline_verdict_request_duration_seconds",
		Help:        "Latency of verdict generator calls",
		ConstLabels: prometheus.Labels{"generator": generator},
		Buckets:     []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
	})

	reg.MustRegister(requests)
	reg.MustRegister(duration)

	return &Metrics{
		Requests: requests,
		Duration: duration,
	}
}

func (m *Metrics) observe(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
	if seconds >= 0 {
		m.Duration.Observe(seconds)
	}
}
