package dashboard

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
	colorText    = lipgloss.Color("#E5E7EB") // Light gray
	colorDim     = lipgloss.Color("#4B5563") // Darker gray
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	separatorStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	listStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	itemStyle = lipgloss.NewStyle().
			Foreground(colorText)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)
)

func statusStyle(s scoring.Status) lipgloss.Style {
	switch s.Tier() {
	case 2:
		return lipgloss.NewStyle().Foreground(colorError).Bold(true)
	case 1:
		return lipgloss.NewStyle().Foreground(colorWarning)
	case 0:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	default:
		return mutedStyle
	}
}
