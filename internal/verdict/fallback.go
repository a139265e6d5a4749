package verdict

import (
	"slices"
	"strings"
)

const (
	fallbackCompliance   = "Strained"
	fallbackPrimaryFault = "Infrastructure"
)

var fallbackReasons = map[string][]string{
	"mumbai": {
		"Infrastructure saturation due to density.",
		"Monsoon drainage governance gaps.",
		"Housing affordability index shift.",
	},
	"delhi": {
		"Seasonal AQI threshold breach.",
		"Traffic congestion in central corridors.",
		"Waste management system strain.",
	},
	"bangalore": {
		"Transport infrastructure bottleneck.",
		"Urban flooding risk management.",
		"Rapid water-table depletion.",
	},
	"hyderabad": {
		"Historical heritage preservation vs growth.",
		"Public transport connectivity gaps.",
		"Expanding peri-urban infrastructure needs.",
	},
}

var genericReasons = []string{
	"Data synchronization lag.",
	"Metric verification in progress.",
	"Manual audit required.",
}

// Fallback returns the canned verdict for subjectName. Unknown names get the
// generic reasons.
func Fallback(subjectName string) Verdict {
	reasons, ok := fallbackReasons[strings.ToLower(strings.TrimSpace(subjectName))]
	if !ok {
		reasons = genericReasons
	}
	return Verdict{
		Compliance:   fallbackCompliance,
		Reasons:      slices.Clone(reasons),
		PrimaryFault: fallbackPrimaryFault,
		Source:       SourceFallback,
	}
}
