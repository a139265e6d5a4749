package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/moolen/faultline/internal/analysis"
	"github.com/moolen/faultline/internal/subject"
	"github.com/moolen/faultline/internal/topology"
)

// View renders the entire dashboard.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteString("\n")

	list := listStyle.Width(listWidth).Height(m.viewport.Height).Render(m.renderList())
	detail := detailStyle.Render(m.viewport.View())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, detail))
	b.WriteString("\n")

	if m.editing || m.svc.Variant() == subject.Market {
		b.WriteString(m.topic.View())
	}
	if m.lastError != nil {
		b.WriteString(" ")
		b.WriteString(errorStyle.Render("Error: " + m.lastError.Error()))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderHeader() string {
	snap := m.snapshot()

	title := titleStyle.Render("FAULTLINE")
	info := string(snap.Variant)
	if snap.Topic != "" {
		info += " · " + snap.Topic
	}
	if snap.Published() {
		trend := m.svc.Trend()
		info += fmt.Sprintf(" · mean %.2f · %s (%+.2f) · run %s",
			snap.MeanScore(), trend.State, trend.Velocity, shortID(snap.RunID))
	} else {
		info += " · no analysis yet"
	}

	status := ""
	if m.running {
		status = " " + m.spinner.View() + " analyzing"
	}
	return title + " " + mutedStyle.Render(info) + status
}

func (m *Model) renderList() string {
	snap := m.snapshot()
	if len(snap.Subjects) == 0 {
		return mutedStyle.Render("No subjects")
	}

	var b strings.Builder
	for i, s := range snap.Subjects {
		r := snap.Results[s.ID]
		name := truncate(s.Label(), 14)
		line := fmt.Sprintf("%-14s %6.2f ", name, r.Score)
		status := statusStyle(r.Status).Render(string(r.Status))
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("▸ " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
		b.WriteString(status)
		if i < len(snap.Subjects)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderDetail renders the selection pane content.
func (m *Model) renderDetail(snap *analysis.Snapshot, sel analysis.Selection) string {
	if !snap.Published() {
		return mutedStyle.Render("Waiting for the first analysis...")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(sel.Name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Score   %s\n", statusStyle(sel.Result.Status).Render(
		fmt.Sprintf("%.2f %s", sel.Result.Score, sel.Result.Status)))
	fmt.Fprintf(&b, "Health  %.2f\n", sel.Health)
	if snap.Variant == subject.Market {
		fmt.Fprintf(&b, "Change  %+.2f%%\n", sel.Result.Change*100)
		value := topology.MissingValue
		if sel.Result.RawMetrics.Has(subject.MetricValueINR) {
			value = topology.FormatINR(sel.Result.RawMetrics.Get(subject.MetricValueINR))
		}
		fmt.Fprintf(&b, "Value   %s\n", value)
		fmt.Fprintf(&b, "Next    %s\n", sel.PredictedValue)
	}
	if v := sel.Result.Verdict; v != nil {
		fmt.Fprintf(&b, "Verdict %s (%s)\n", v.Compliance, v.Source)
		if v.PrimaryFault != "" {
			fmt.Fprintf(&b, "Fault   %s\n", v.PrimaryFault)
		}
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Rationale"))
	b.WriteString("\n")
	for _, line := range sel.Result.Rationale {
		b.WriteString("• " + line + "\n")
	}

	if len(sel.FaultLog) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Fault log"))
		b.WriteString("\n")
		for _, e := range sel.FaultLog {
			fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("["+string(e.Category)+"]"), e.Text)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortID(id string) string {
	return truncate(id, 8)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
