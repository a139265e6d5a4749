// Package scoring maps a subject's raw metrics to a bounded score and a
// discrete status tier.
package scoring

// Status is a discrete severity tier.
type Status string

const (
	StatusIdle     Status = "Idle"
	StatusStable   Status = "Stable"
	StatusStrained Status = "Strained"
	StatusCritical Status = "Critical"
	StatusVolatile Status = "Volatile"
	StatusRupture  Status = "Rupture"
)

// Governance thresholds. A score equal to a threshold stays on the lower tier.
const (
	CriticalAbove = 70.0
	StrainedAbove = 40.0
)

// Tier returns 0 for the baseline tier, 1 for the middle tier, 2 for the
// worst tier and -1 for Idle or unknown values.
func (s Status) Tier() int {
	switch s {
	case StatusStable:
		return 0
	case StatusStrained, StatusVolatile:
		return 1
	case StatusCritical, StatusRupture:
		return 2
	default:
		return -1
	}
}

// IsWorst reports whether s is the most severe tier of its variant.
func (s Status) IsWorst() bool {
	return s.Tier() == 2
}

// ClassifyScore maps a governance score to its status.
func ClassifyScore(score float64) Status {
	switch {
	case score > CriticalAbove:
		return StatusCritical
	case score > StrainedAbove:
		return StatusStrained
	default:
		return StatusStable
	}
}
