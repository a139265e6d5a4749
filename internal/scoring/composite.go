package scoring

import (
	"sort"

	"github.com/moolen/faultline/internal/subject"
)

// Component is one weighted term of the composite.
type Component struct {
	Metric  string
	Label   string
	Weight  float64
	Ceiling float64
}

// WeightedComposite scores governance subjects. Each component contributes
// Weight * clamp(value/Ceiling, 0, 1). The stagnation penalty
// max(0, StagnationBaseline-growth)*StagnationFactor is added without its own
// cap; only the final clamp to [0,100] bounds it.
type WeightedComposite struct {
	Components         []Component
	StagnationMetric   string
	StagnationBaseline float64
	StagnationFactor   float64
}

// DefaultWeightedComposite returns the 30/25/20/15 + stagnation policy.
func DefaultWeightedComposite() WeightedComposite {
	return WeightedComposite{
		Components: []Component{
			// AQI saturates at the start of the hazardous band.
			{Metric: subject.MetricAQI, Label: "environment", Weight: 30, Ceiling: 300},
			{Metric: subject.MetricTransport, Label: "infrastructure", Weight: 25, Ceiling: 60},
			{Metric: subject.MetricCrime, Label: "safety", Weight: 20, Ceiling: 100},
			{Metric: subject.MetricPoverty, Label: "social", Weight: 15, Ceiling: 50},
		},
		StagnationMetric:   subject.MetricGrowth,
		StagnationBaseline: 10,
		StagnationFactor:   1.5,
	}
}

// Variant implements Policy.
func (WeightedComposite) Variant() subject.Variant { return subject.Governance }

// Score implements Policy. previous is ignored.
func (w WeightedComposite) Score(s subject.Subject, _ *subject.Subject) ScoreResult {
	total := 0.0
	for _, c := range w.Breakdown(s.Metrics) {
		total += c.Points
	}
	score := round(clamp(total, 0, 100), 4)

	return ScoreResult{
		Score:      score,
		Status:     ClassifyScore(score),
		RawMetrics: s.Metrics.Clone(),
	}
}

// Contribution is the weighted share of one component.
type Contribution struct {
	Metric string  `json:"metric"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Points float64 `json:"points"`
}

// Breakdown returns every component's contribution, largest first. Missing
// and negative metrics contribute nothing.
func (w WeightedComposite) Breakdown(m subject.Metrics) []Contribution {
	out := make([]Contribution, 0, len(w.Components)+1)
	for _, c := range w.Components {
		v := m.Get(c.Metric)
		points := 0.0
		if c.Ceiling > 0 {
			points = c.Weight * clamp(v/c.Ceiling, 0, 1)
		}
		out = append(out, Contribution{Metric: c.Metric, Label: c.Label, Value: v, Points: points})
	}

	if w.StagnationMetric != "" {
		penalty := 0.0
		// A missing growth key contributes zero rather than the full penalty.
		if m.Has(w.StagnationMetric) {
			growth := m.Get(w.StagnationMetric)
			if growth < w.StagnationBaseline {
				penalty = (w.StagnationBaseline - growth) * w.StagnationFactor
			}
		}
		out = append(out, Contribution{
			Metric: w.StagnationMetric,
			Label:  "economic",
			Value:  m.Get(w.StagnationMetric),
			Points: penalty,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out
}
