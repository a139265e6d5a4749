package analysis

import (
	"strings"
	"time"

	"github.com/moolen/faultline/internal/rationale"
	"github.com/moolen/faultline/internal/scoring"
	"github.com/moolen/faultline/internal/subject"
	"github.com/moolen/faultline/internal/topology"
)

// Snapshot is the immutable output of one run. It is never mutated after
// publication.
type Snapshot struct {
	RunID       string                         `json:"runId"`
	Variant     subject.Variant                `json:"variant"`
	Topic       string                         `json:"topic,omitempty"`
	GeneratedAt time.Time                      `json:"generatedAt"`
	Subjects    []subject.Subject              `json:"subjects"`
	Results     map[string]scoring.ScoreResult `json:"results"`
	Nodes       []topology.Node                `json:"nodes"`
	Edges       []topology.Edge                `json:"edges"`
}

func emptySnapshot(variant subject.Variant) *Snapshot {
	return &Snapshot{
		Variant:  variant,
		Subjects: []subject.Subject{},
		Results:  map[string]scoring.ScoreResult{},
		Nodes:    []topology.Node{},
		Edges:    []topology.Edge{},
	}
}

// Published reports whether s came out of a completed run.
func (s *Snapshot) Published() bool {
	return s != nil && s.RunID != ""
}

// Lookup resolves id case-insensitively.
func (s *Snapshot) Lookup(id string) (subject.Subject, scoring.ScoreResult, bool) {
	if s == nil {
		return subject.Subject{}, scoring.ScoreResult{}, false
	}
	for _, subj := range s.Subjects {
		if strings.EqualFold(subj.ID, id) {
			if r, ok := s.Results[subj.ID]; ok {
				return subj, r, true
			}
		}
	}
	return subject.Subject{}, scoring.ScoreResult{}, false
}

// MeanScore averages all result scores, 0 for an empty snapshot.
func (s *Snapshot) MeanScore() float64 {
	if s == nil || len(s.Results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range s.Results {
		sum += r.Score
	}
	return sum / float64(len(s.Results))
}

// Selection is the detail view of one subject.
type Selection struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Result         scoring.ScoreResult `json:"result"`
	Health         float64             `json:"health"`
	PredictedValue string              `json:"predictedValue,omitempty"`
	FaultLog       []rationale.Entry   `json:"faultLog"`
}

func newSelection(snap *Snapshot, id string) Selection {
	subj, result, ok := snap.Lookup(id)
	if !ok {
		result = scoring.Placeholder()
		subj = subject.Subject{ID: id}
	}

	sel := Selection{
		ID:       subj.ID,
		Name:     subj.Label(),
		Result:   result,
		Health:   scoring.Health(result.Score),
		FaultLog: rationale.Categorized(faultLines(result)),
	}
	if snap.Variant == subject.Market {
		sel.PredictedValue = topology.PredictedValue(snap.Subjects, subj.ID)
	}
	return sel
}

// faultLines prefers verdict reasons and falls back to the rationale.
func faultLines(r scoring.ScoreResult) []string {
	if r.Verdict != nil && len(r.Verdict.Reasons) > 0 {
		return r.Verdict.Reasons
	}
	return r.Rationale
}

// TrendState describes the direction of the mean score across runs.
type TrendState string

const (
	TrendExpanding   TrendState = "Expanding"
	TrendCompressing TrendState = "Compressing"
)

// Trend summarizes the bounded run history.
type Trend struct {
	Velocity float64    `json:"velocity"`
	State    TrendState `json:"state"`
	History  []float64  `json:"history"`
}

// computeTrend returns (last-first)/len over history.
func computeTrend(history []float64) Trend {
	t := Trend{State: TrendCompressing, History: append([]float64{}, history...)}
	if len(history) == 0 {
		return t
	}
	first, last := history[0], history[len(history)-1]
	t.Velocity = (last - first) / float64(len(history))
	if last > first {
		t.State = TrendExpanding
	}
	return t
}
