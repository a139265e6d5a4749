package scoring

import (
	"math"

	"github.com/moolen/faultline/internal/subject"
)

// Fixed scores of the relative-change tiers.
const (
	RuptureScore  = 95.0
	VolatileScore = 55.0
	StableScore   = 20.0
)

// RelativeChange scores market subjects on |cur-prev|/prev of ValueMetric.
// The result is a step function of the change, not a continuous score.
type RelativeChange struct {
	ValueMetric   string
	RuptureAbove  float64
	VolatileAbove float64
}

// DefaultRelativeChange uses 40% and 15% bands on "value".
func DefaultRelativeChange() RelativeChange {
	return RelativeChange{
		ValueMetric:   subject.MetricValue,
		RuptureAbove:  0.40,
		VolatileAbove: 0.15,
	}
}

// Variant implements Policy.
func (RelativeChange) Variant() subject.Variant { return subject.Market }

// Score implements Policy. Without a predecessor, or with a zero previous
// value, the subject is Stable with no change.
func (r RelativeChange) Score(s subject.Subject, previous *subject.Subject) ScoreResult {
	change := 0.0
	if previous != nil {
		prev := previous.Metrics.Get(r.ValueMetric)
		cur := s.Metrics.Get(r.ValueMetric)
		if prev != 0 {
			change = math.Abs(cur-prev) / math.Abs(prev)
		}
	}

	status, score := r.Classify(change)
	return ScoreResult{
		Score:      score,
		Status:     status,
		Change:     round(change, 6),
		RawMetrics: s.Metrics.Clone(),
	}
}

// Classify maps a relative change to its tier and fixed score.
func (r RelativeChange) Classify(change float64) (Status, float64) {
	switch {
	case change > r.RuptureAbove:
		return StatusRupture, RuptureScore
	case change > r.VolatileAbove:
		return StatusVolatile, VolatileScore
	default:
		return StatusStable, StableScore
	}
}
