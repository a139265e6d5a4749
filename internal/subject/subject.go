// Package subject defines the analyzed units (a city or a year) and their
// raw metric bundles.
package subject

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"strings"
)

// Variant selects the subject dimension and the scoring policy.
type Variant string

const (
	// Governance scores a fixed set of cities on a weighted composite.
	Governance Variant = "governance"
	// Market scores a yearly value series on relative change.
	Market Variant = "market"
)

// ErrUnknownVariant is returned by ParseVariant for unsupported names.
var ErrUnknownVariant = errors.New("unknown variant")

// ParseVariant parses a case-insensitive variant name.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case Governance:
		return Governance, nil
	case Market:
		return Market, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// Metric keys.
const (
	MetricAQI       = "aqi"
	MetricTransport = "transport"
	MetricCrime     = "crime"
	MetricPoverty   = "poverty"
	MetricGrowth    = "growth"
	MetricValue     = "value"
	MetricValueINR  = "value_inr"
)

// Metrics is a raw key to value bundle.
type Metrics map[string]float64

// Get returns the value for key. Missing keys and non-finite values read as 0.
func (m Metrics) Get(key string) float64 {
	v, ok := m[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Has reports whether key is present.
func (m Metrics) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Clone returns a copy that is never nil.
func (m Metrics) Clone() Metrics {
	if m == nil {
		return Metrics{}
	}
	return maps.Clone(m)
}

// Subject is one analyzed unit. Ordinal fixes its position in the sequence.
type Subject struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Ordinal int     `json:"ordinal" yaml:"-"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
}

// Label returns Name, falling back to ID.
func (s Subject) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// Previous returns the predecessor of subjects[i], or nil for the first one.
func Previous(subjects []Subject, i int) *Subject {
	if i <= 0 || i > len(subjects) {
		return nil
	}
	return &subjects[i-1]
}

// Renumber assigns ordinals by slice position.
func Renumber(subjects []Subject) []Subject {
	for i := range subjects {
		subjects[i].Ordinal = i
	}
	return subjects
}
