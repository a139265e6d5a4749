package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/moolen/faultline/internal/dashboard"
	"github.com/moolen/faultline/internal/logging"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive terminal view of the analysis",
	Long: `Run the analysis in-process and browse it interactively. Arrow keys
select a subject, r re-runs the analysis and t edits the market topic. A file
source is re-analyzed when the file changes.`,
	RunE: runDashboard,
}

func init() {
	addSourceFlags(dashboardCmd)
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	if !dashboard.IsTerminal() {
		return errors.New("dashboard requires a terminal, use `faultline analyze` instead")
	}
	if err := setupLog(logLevelFlags, logFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	// The alt screen owns the terminal.
	logging.SetOutput(io.Discard)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := buildStack(ctx, cfg, nil)
	if err != nil {
		return err
	}
	watcher, err := st.subjectsWatcher()
	if err != nil {
		return err
	}
	if watcher != nil {
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = watcher.Stop(ctx) }()
	}
	defer func() { _ = st.orchestrator.Stop(ctx) }()

	return dashboard.Run(ctx, st.orchestrator, dashboard.Config{
		Topic:  cfg.Topic,
		Output: os.Stdout,
	})
}
