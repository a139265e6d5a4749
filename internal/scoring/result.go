package scoring

import (
	"math"

	"github.com/moolen/faultline/internal/subject"
	"github.com/moolen/faultline/internal/verdict"
)

// ScoreResult is the derived, read-only outcome for one subject in one run.
type ScoreResult struct {
	Score      float64          `json:"score"`
	Status     Status           `json:"status"`
	Change     float64          `json:"change,omitempty"`
	Rationale  []string         `json:"rationale"`
	RawMetrics subject.Metrics  `json:"rawMetrics"`
	Verdict    *verdict.Verdict `json:"verdict,omitempty"`
}

// Placeholder is returned for selections that do not resolve to a subject.
func Placeholder() ScoreResult {
	return ScoreResult{
		Score:      0,
		Status:     StatusIdle,
		Rationale:  []string{},
		RawMetrics: subject.Metrics{},
	}
}

// Health is the inverse of a fault score on the same 0-100 scale.
func Health(score float64) float64 {
	return 100 - clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// round keeps scores stable for display and comparison.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
