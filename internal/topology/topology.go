// Package topology lays scored subjects out as a left-to-right chain of
// nodes and edges for rendering.
package topology

import (
	"fmt"
	"math"

	"github.com/moolen/faultline/internal/scoring"
	"github.com/moolen/faultline/internal/subject"
)

// Edge strokes per tier.
const (
	StrokeWorst    = "#ef4444"
	StrokeElevated = "#f59e0b"
	StrokeNormal   = "#06b6d4"
)

const (
	governanceSpacing = 350.0
	marketSpacing     = 250.0
	canvasHeight      = 400.0
)

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one subject on the canvas.
type Node struct {
	ID             string   `json:"id"`
	Label          string   `json:"label"`
	ValueDisplay   string   `json:"valueDisplay"`
	Position       Position `json:"position"`
	IsRupture      bool     `json:"isRupture"`
	Compliance     string   `json:"compliance"`
	FaultIntensity float64  `json:"faultIntensity"`
}

// EdgeStyle carries rendering hints for an edge.
type EdgeStyle struct {
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

// Edge links consecutive subjects.
type Edge struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Target   string    `json:"target"`
	Animated bool      `json:"animated"`
	Style    EdgeStyle `json:"style"`
}

// Builder turns scored subjects into nodes and edges.
type Builder struct {
	variant subject.Variant
	spacing float64
	height  float64
}

// NewBuilder returns the builder for variant.
func NewBuilder(variant subject.Variant) *Builder {
	spacing := governanceSpacing
	if variant == subject.Market {
		spacing = marketSpacing
	}
	return &Builder{variant: variant, spacing: spacing, height: canvasHeight}
}

// Build returns one node per subject and one edge per adjacent pair.
// results must be index-aligned with subjects; missing entries are treated
// as the placeholder result.
func (b *Builder) Build(subjects []subject.Subject, results []scoring.ScoreResult) ([]Node, []Edge) {
	resultAt := func(i int) scoring.ScoreResult {
		if i < len(results) {
			return results[i]
		}
		return scoring.Placeholder()
	}

	ys := b.yPositions(subjects, resultAt)

	nodes := make([]Node, 0, len(subjects))
	for i, s := range subjects {
		r := resultAt(i)
		nodes = append(nodes, Node{
			ID:             s.ID,
			Label:          s.Label(),
			ValueDisplay:   b.valueDisplay(s, r),
			Position:       Position{X: float64(s.Ordinal) * b.spacing, Y: ys[i]},
			IsRupture:      r.Status.IsWorst(),
			Compliance:     string(r.Status),
			FaultIntensity: r.Score / 100,
		})
	}

	edges := make([]Edge, 0, max(len(subjects)-1, 0))
	for i := 1; i < len(subjects); i++ {
		status := resultAt(i).Status
		edges = append(edges, Edge{
			ID:       fmt.Sprintf("e%d", i),
			Source:   subjects[i-1].ID,
			Target:   subjects[i].ID,
			Animated: status.IsWorst(),
			Style:    styleFor(status),
		})
	}

	return nodes, edges
}

func (b *Builder) yPositions(subjects []subject.Subject, resultAt func(int) scoring.ScoreResult) []float64 {
	ys := make([]float64, len(subjects))

	if b.variant != subject.Market {
		for i := range subjects {
			ys[i] = b.height - resultAt(i).Score/100*b.height
		}
		return ys
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range subjects {
		v := s.Metrics.Get(subject.MetricValueINR)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	for i, s := range subjects {
		if hi == lo {
			ys[i] = b.height / 2
			continue
		}
		v := s.Metrics.Get(subject.MetricValueINR)
		ys[i] = b.height - (v-lo)/(hi-lo)*b.height
	}
	return ys
}

func (b *Builder) valueDisplay(s subject.Subject, r scoring.ScoreResult) string {
	if b.variant == subject.Market {
		return FormatINR(s.Metrics.Get(subject.MetricValueINR))
	}
	return fmt.Sprintf("%.1f", r.Score)
}

func styleFor(status scoring.Status) EdgeStyle {
	switch status.Tier() {
	case 2:
		return EdgeStyle{Stroke: StrokeWorst, StrokeWidth: 3}
	case 1:
		return EdgeStyle{Stroke: StrokeElevated, StrokeWidth: 2}
	default:
		return EdgeStyle{Stroke: StrokeNormal, StrokeWidth: 2}
	}
}
