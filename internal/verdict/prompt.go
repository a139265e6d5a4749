package verdict

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/moolen/faultline/internal/subject"
)

const jsonInstruction = `Return ONLY raw JSON in this exact format:
{"compliance": "Stable|Strained|Critical", "reasons": ["reason 1", "reason 2", "reason 3"], "primaryFault": "short label"}`

// BuildPrompt renders the fixed prompt for a subject.
func BuildPrompt(variant subject.Variant, name string, m subject.Metrics) string {
	if variant == subject.Market {
		return buildMarketPrompt(name, m)
	}
	return buildGovernancePrompt(name, m)
}

func buildGovernancePrompt(name string, m subject.Metrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Act as a Professional Urban Governance Auditor. Analyze %s with these metrics:\n", name)
	fmt.Fprintf(&b, "- Crime: %s/100\n", num(m.Get(subject.MetricCrime)))
	fmt.Fprintf(&b, "- Poverty: %s%%\n", num(m.Get(subject.MetricPoverty)))
	fmt.Fprintf(&b, "- AQI: %s\n", num(m.Get(subject.MetricAQI)))
	fmt.Fprintf(&b, "- Transport: %s mins\n", num(m.Get(subject.MetricTransport)))
	fmt.Fprintf(&b, "- Growth: %s%%\n\n", num(m.Get(subject.MetricGrowth)))
	b.WriteString("Identify the top 3 governance issues and classify the city as Stable, Strained or Critical.\n")
	b.WriteString(jsonInstruction)
	return b.String()
}

func buildMarketPrompt(name string, m subject.Metrics) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "Act as a Commodity Market Compliance Analyst. Assess the valuation for period %s:\n", name)
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, num(m.Get(k)))
	}
	b.WriteString("\nIdentify the top 3 volatility drivers and classify the period as Stable, Strained or Critical.\n")
	b.WriteString(jsonInstruction)
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
