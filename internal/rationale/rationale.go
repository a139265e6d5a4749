// Package rationale produces short justification strings for a score.
package rationale

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/moolen/faultline/internal/scoring"
	"github.com/moolen/faultline/internal/subject"
	"github.com/moolen/faultline/internal/verdict"
)

// MaxEntries caps every rationale list.
const MaxEntries = 3

var tierHeadings = map[subject.Variant]map[scoring.Status]string{
	subject.Governance: {
		scoring.StatusCritical: "Critical Governance Fault",
		scoring.StatusStrained: "Governance Strain",
		scoring.StatusStable:   "Stable Governance",
	},
	subject.Market: {
		scoring.StatusRupture:  "Significant Valuation Breach",
		scoring.StatusVolatile: "Elevated Volatility",
		scoring.StatusStable:   "Normal Market Flow",
	},
}

// TierHeading returns the fixed prefix of the tier statement for status.
func TierHeading(variant subject.Variant, status scoring.Status) string {
	if h, ok := tierHeadings[variant][status]; ok {
		return h
	}
	return "No Assessment"
}

// Generator explains score results with fixed local rules, optionally
// merged with a verdict.
type Generator struct {
	variant   subject.Variant
	topic     string
	composite scoring.WeightedComposite
}

// NewGenerator creates a generator for variant.
func NewGenerator(variant subject.Variant) *Generator {
	return &Generator{
		variant:   variant,
		composite: scoring.DefaultWeightedComposite(),
	}
}

// ForTopic returns a copy that also matches flavour keywords against topic.
func (g *Generator) ForTopic(topic string) *Generator {
	c := *g
	c.topic = topic
	return &c
}

// Explain returns 1 to MaxEntries statements, the tier statement first.
//
// A model verdict contributes its reasons right after the tier statement.
// Without one, flavour statements come next and fallback reasons, if any,
// fill the remaining slots.
func (g *Generator) Explain(s subject.Subject, result scoring.ScoreResult, previous *subject.Subject) []string {
	out := make([]string, 0, MaxEntries)
	out = append(out, g.tierStatement(s, result, previous))

	v := result.Verdict
	if v != nil && v.Source == verdict.SourceModel {
		return appendCapped(out, v.Reasons...)
	}

	out = appendCapped(out, Flavor(s.Label(), g.topic)...)
	if v != nil {
		out = appendCapped(out, v.Reasons...)
	}
	return out
}

func (g *Generator) tierStatement(s subject.Subject, result scoring.ScoreResult, previous *subject.Subject) string {
	heading := TierHeading(g.variant, result.Status)
	if result.Status == scoring.StatusIdle {
		return heading + ": no analysis available."
	}

	if g.variant == subject.Market {
		if previous == nil {
			return fmt.Sprintf("%s: baseline period %s, no prior value.", heading, s.Label())
		}
		return fmt.Sprintf("%s: value moved %.1f%% against %s.", heading, result.Change*100, previous.Label())
	}

	switch result.Status {
	case scoring.StatusCritical:
		return fmt.Sprintf("%s: composite score %.1f exceeds %.0f, led by %s.",
			heading, result.Score, scoring.CriticalAbove, g.leadingFactor(s))
	case scoring.StatusStrained:
		return fmt.Sprintf("%s: composite score %.1f exceeds %.0f, led by %s.",
			heading, result.Score, scoring.StrainedAbove, g.leadingFactor(s))
	default:
		return fmt.Sprintf("%s: composite score %.1f is within tolerance.", heading, result.Score)
	}
}

func (g *Generator) leadingFactor(s subject.Subject) string {
	breakdown := g.composite.Breakdown(s.Metrics)
	if len(breakdown) == 0 || breakdown[0].Points == 0 {
		return "no single factor"
	}
	return breakdown[0].Label
}

func appendCapped(out []string, entries ...string) []string {
	for _, e := range entries {
		if len(out) >= MaxEntries {
			break
		}
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

type flavorRule struct {
	keywords  []string
	statement string
}

var flavorRules = []flavorRule{
	{[]string{"gold", "silver", "platinum"}, "Precious-metal provenance: confirm responsible-sourcing certification."},
	{[]string{"cobalt", "lithium", "tin", "tantalum", "tungsten"}, "Conflict-mineral exposure: supply-chain due diligence required."},
	{[]string{"oil", "crude", "gas", "lng"}, "Energy commodity: counterparty sanctions screening applies."},
	{[]string{"mumbai"}, "Coastal density amplifies monsoon infrastructure load."},
	{[]string{"delhi"}, "Winter inversion traps particulate emissions."},
	{[]string{"bangalore", "bengaluru"}, "Lake-bed encroachment drives flood exposure."},
	{[]string{"hyderabad"}, "Peri-urban expansion outpaces transit coverage."},
}

// Flavor returns the fixed domain statements whose keywords appear as whole
// words in any of the given texts, in table order.
func Flavor(texts ...string) []string {
	words := make(map[string]bool)
	for _, t := range texts {
		for _, w := range strings.FieldsFunc(strings.ToLower(t), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			words[w] = true
		}
	}

	var out []string
	for _, rule := range flavorRules {
		for _, k := range rule.keywords {
			if words[k] {
				out = append(out, rule.statement)
				break
			}
		}
	}
	return out
}
