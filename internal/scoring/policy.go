package scoring

import (
	"fmt"

	"github.com/moolen/faultline/internal/subject"
)

// Policy computes score and status for one subject. previous is the
// subject at ordinal-1, or nil for the first one.
type Policy interface {
	Score(s subject.Subject, previous *subject.Subject) ScoreResult
	Variant() subject.Variant
}

// PolicyFor returns the default policy of a variant.
func PolicyFor(v subject.Variant) (Policy, error) {
	switch v {
	case subject.Governance:
		return DefaultWeightedComposite(), nil
	case subject.Market:
		return DefaultRelativeChange(), nil
	default:
		return nil, fmt.Errorf("%w: %q", subject.ErrUnknownVariant, v)
	}
}

// ScoreAll scores subjects in order, passing each one its predecessor.
func ScoreAll(p Policy, subjects []subject.Subject) []ScoreResult {
	out := make([]ScoreResult, len(subjects))
	for i := range subjects {
		out[i] = p.Score(subjects[i], subject.Previous(subjects, i))
	}
	return out
}
