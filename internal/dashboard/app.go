// Package dashboard is an interactive terminal view of the latest analysis
// using Bubble Tea.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/moolen/faultline/internal/analysis"
	"github.com/moolen/faultline/internal/subject"
)

// Service is the analysis surface the dashboard drives.
type Service interface {
	Variant() subject.Variant
	Snapshot() *analysis.Snapshot
	Selection() analysis.Selection
	Select(id string)
	Analyze(ctx context.Context, topic string) (*analysis.Snapshot, error)
	Trend() analysis.Trend
}

// Config contains configuration for the dashboard.
type Config struct {
	// Topic is the initial market topic.
	Topic string
	// Refresh is how often the dashboard picks up runs started elsewhere,
	// e.g. by the subjects file watcher. Default: 2s.
	Refresh time.Duration

	Input  io.Reader
	Output io.Writer
}

// Run starts the dashboard and blocks until the user quits or ctx ends.
func Run(ctx context.Context, svc Service, cfg Config) error {
	if cfg.Refresh <= 0 {
		cfg.Refresh = 2 * time.Second
	}

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}
	if cfg.Input != nil {
		opts = append(opts, tea.WithInput(cfg.Input))
	}
	if cfg.Output != nil {
		opts = append(opts, tea.WithOutput(cfg.Output))
	}

	program := tea.NewProgram(NewModel(ctx, svc, cfg), opts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
