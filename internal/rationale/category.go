package rationale

import "strings"

// Category groups fault-log lines for display.
type Category string

const (
	CategoryEnvironment    Category = "Environment"
	CategoryInfrastructure Category = "Infrastructure"
	CategorySafety         Category = "Safety"
	CategoryEconomic       Category = "Economic"
	CategoryGeneral        Category = "General"
)

var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryEnvironment, []string{"aqi", "air", "pollution"}},
	{CategoryInfrastructure, []string{"transport", "traffic", "commute", "infrastructure"}},
	{CategorySafety, []string{"crime", "safety", "police"}},
	{CategoryEconomic, []string{"poverty", "growth", "economic"}},
}

// Categorize returns the first category whose keyword occurs in reason.
func Categorize(reason string) Category {
	lower := strings.ToLower(reason)
	for _, c := range categoryKeywords {
		for _, k := range c.keywords {
			if strings.Contains(lower, k) {
				return c.category
			}
		}
	}
	return CategoryGeneral
}

// Entry is a reason with its category.
type Entry struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

// Categorized tags every reason.
func Categorized(reasons []string) []Entry {
	out := make([]Entry, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, Entry{Text: r, Category: Categorize(r)})
	}
	return out
}
