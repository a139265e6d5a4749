package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/moolen/faultline/internal/scoring"
)

// Color palette
var (
	colorPrimary = lipgloss.Color("#06B6D4") // Cyan
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Amber
	colorError   = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#6B7280") // Gray
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	borderStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

func statusStyle(s scoring.Status) lipgloss.Style {
	switch s.Tier() {
	case 2:
		return cellStyle.Foreground(colorError).Bold(true)
	case 1:
		return cellStyle.Foreground(colorWarning)
	case 0:
		return cellStyle.Foreground(colorSuccess)
	default:
		return cellStyle.Foreground(colorMuted)
	}
}
