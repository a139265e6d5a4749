package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"single line fence", "```json {\"a\":1}```", `{"a":1}`},
		{"upper case info", "```JSON\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```\n ", `{"a":1}`},
		{"object on fence line", "```{\"a\":\n1}\n```", "{\"a\":\n1}"},
		{"trailing fence only", "{\"a\":1}\n```", `{"a":1}`},
		{"trailing fence with whitespace", "\n{\"a\":1}```  \n", `{"a":1}`},
		{"leading fence only", "```json\n{\"a\":1}", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripFences(tt.input))
		})
	}
}

func TestParse(t *testing.T) {
	v, err := Parse("```json\n{\"compliance\":\"Critical\",\"reasons\":[\"AQI breach.\",\"Gridlock.\",\"Waste.\",\"Extra.\"],\"primaryFault\":\"Environment\"}\n```")
	require.NoError(t, err)

	assert.Equal(t, "Critical", v.Compliance)
	assert.Equal(t, []string{"AQI breach.", "Gridlock.", "Waste."}, v.Reasons)
	assert.Equal(t, "Environment", v.PrimaryFault)
	assert.Equal(t, SourceModel, v.Source)

	v, err = Parse("{\"compliance\":\"Stable\",\"reasons\":[\"Clean air.\"],\"primaryFault\":\"None\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Stable", v.Compliance)
	assert.Equal(t, []string{"Clean air."}, v.Reasons)
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   \n"},
		{"empty fence", "```json\n```"},
		{"prose", "The city is strained."},
		{"array", `["a","b"]`},
		{"missing compliance", `{"reasons":["a"],"primaryFault":"x"}`},
		{"empty reasons", `{"compliance":"Stable","reasons":[],"primaryFault":"x"}`},
		{"blank reasons", `{"compliance":"Stable","reasons":["  "],"primaryFault":"x"}`},
		{"missing primary fault", `{"compliance":"Stable","reasons":["a"]}`},
		{"wrong types", `{"compliance":1,"reasons":"a","primaryFault":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestFallback(t *testing.T) {
	delhi := Fallback("Delhi")
	assert.Equal(t, "Strained", delhi.Compliance)
	assert.Equal(t, "Infrastructure", delhi.PrimaryFault)
	assert.Equal(t, SourceFallback, delhi.Source)
	assert.Equal(t, []string{
		"Seasonal AQI threshold breach.",
		"Traffic congestion in central corridors.",
		"Waste management system strain.",
	}, delhi.Reasons)

	assert.Equal(t, delhi, Fallback("  delhi "))

	unknown := Fallback("Atlantis")
	assert.Equal(t, "Strained", unknown.Compliance)
	assert.Equal(t, []string{
		"Data synchronization lag.",
		"Metric verification in progress.",
		"Manual audit required.",
	}, unknown.Reasons)

	// Callers may not mutate the shared table.
	unknown.Reasons[0] = "changed"
	assert.Equal(t, "Data synchronization lag.", Fallback("Atlantis").Reasons[0])
}
