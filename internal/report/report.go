// Package report renders snapshots for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/moolen/faultline/internal/analysis"
	"github.com/moolen/faultline/internal/rationale"
	"github.com/moolen/faultline/internal/scoring"
	"github.com/moolen/faultline/internal/subject"
	"github.com/moolen/faultline/internal/topology"
)

// Format selects an output rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatMemo  Format = "memo"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML, FormatMemo:
		return f, nil
	default:
		return "", fmt.Errorf("invalid output format %q (must be table, json, yaml or memo)", s)
	}
}

// Row is one subject in flattened form.
type Row struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Status    string   `json:"status" yaml:"status"`
	Score     float64  `json:"score" yaml:"score"`
	Change    float64  `json:"change,omitempty" yaml:"change,omitempty"`
	Value     string   `json:"value" yaml:"value"`
	Rationale []string `json:"rationale" yaml:"rationale"`
	Verdict   string   `json:"verdict,omitempty" yaml:"verdict,omitempty"`
}

// Document is the structured form written by the yaml renderer.
type Document struct {
	RunID       string    `json:"runId" yaml:"runId"`
	Variant     string    `json:"variant" yaml:"variant"`
	Topic       string    `json:"topic,omitempty" yaml:"topic,omitempty"`
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`
	Subjects    []Row     `json:"subjects" yaml:"subjects"`
}

// NewDocument flattens snap in subject order.
func NewDocument(snap *analysis.Snapshot) Document {
	doc := Document{
		RunID:       snap.RunID,
		Variant:     string(snap.Variant),
		Topic:       snap.Topic,
		GeneratedAt: snap.GeneratedAt,
		Subjects:    make([]Row, 0, len(snap.Subjects)),
	}
	for i, s := range snap.Subjects {
		r := snap.Results[s.ID]
		row := Row{
			ID:        s.ID,
			Name:      s.Label(),
			Status:    string(r.Status),
			Score:     r.Score,
			Change:    r.Change,
			Rationale: r.Rationale,
		}
		if i < len(snap.Nodes) {
			row.Value = snap.Nodes[i].ValueDisplay
		}
		if r.Verdict != nil {
			row.Verdict = fmt.Sprintf("%s (%s, %s)", r.Verdict.Compliance, r.Verdict.PrimaryFault, r.Verdict.Source)
		}
		doc.Subjects = append(doc.Subjects, row)
	}
	return doc
}

// Render writes snap to w in format.
func Render(w io.Writer, snap *analysis.Snapshot, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(snap)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(snap)); err != nil {
			return err
		}
		return enc.Close()
	case FormatMemo:
		out, err := RenderMemo(snap, glamour.WithAutoStyle())
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case FormatTable, "":
		_, err := io.WriteString(w, Table(snap)+"\n")
		return err
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Table renders a styled summary table.
func Table(snap *analysis.Snapshot) string {
	doc := NewDocument(snap)

	valueHeader := "Score"
	if snap.Variant == subject.Market {
		valueHeader = "Value"
	}

	rows := make([][]string, 0, len(doc.Subjects))
	for _, r := range doc.Subjects {
		lead := ""
		if len(r.Rationale) > 0 {
			lead = r.Rationale[0]
		}
		rows = append(rows, []string{r.Name, r.Status, r.Value, lead})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Subject", "Status", valueHeader, "Rationale").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 && row >= 0 && row < len(doc.Subjects) {
				return statusStyle(scoring.Status(doc.Subjects[row].Status))
			}
			return cellStyle
		})

	title := titleStyle.Render(fmt.Sprintf("faultline %s analysis", snap.Variant))
	sub := subtitleStyle.Render(fmt.Sprintf("run %s at %s", snap.RunID, snap.GeneratedAt.Format(time.RFC3339)))
	if snap.Topic != "" {
		sub = subtitleStyle.Render(fmt.Sprintf("topic %s, run %s at %s", snap.Topic, snap.RunID, snap.GeneratedAt.Format(time.RFC3339)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, sub, t.Render())
}

// Markdown renders snap as an audit memo.
func Markdown(snap *analysis.Snapshot) string {
	var b strings.Builder

	heading := "Governance Audit Memo"
	if snap.Variant == subject.Market {
		heading = "Market Volatility Memo"
	}
	fmt.Fprintf(&b, "# %s\n\n", heading)
	if snap.Topic != "" {
		fmt.Fprintf(&b, "**Topic:** %s  \n", snap.Topic)
	}
	fmt.Fprintf(&b, "**Run:** `%s`  \n**Generated:** %s\n\n", snap.RunID, snap.GeneratedAt.Format(time.RFC3339))

	for _, s := range snap.Subjects {
		r := snap.Results[s.ID]
		fmt.Fprintf(&b, "## %s: %s\n\n", s.Label(), r.Status)
		fmt.Fprintf(&b, "- Score: %.1f (health %.1f)\n", r.Score, scoring.Health(r.Score))
		if snap.Variant == subject.Market {
			fmt.Fprintf(&b, "- Value: %s\n", topology.PredictedValue(snap.Subjects, s.ID))
		}
		if r.Verdict != nil {
			fmt.Fprintf(&b, "- Primary fault: %s\n", r.Verdict.PrimaryFault)
		}
		b.WriteString("\n")
		for _, e := range rationale.Categorized(r.Rationale) {
			fmt.Fprintf(&b, "1. *%s*: %s\n", e.Category, e.Text)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMemo renders the markdown memo for a terminal.
func RenderMemo(snap *analysis.Snapshot, opts ...glamour.TermRendererOption) (string, error) {
	opts = append([]glamour.TermRendererOption{glamour.WithWordWrap(100)}, opts...)
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render(Markdown(snap))
}
