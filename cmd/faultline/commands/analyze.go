package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moolen/faultline/internal/config"
	"github.com/moolen/faultline/internal/logging"
	"github.com/moolen/faultline/internal/report"
)

var outputFormat string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis and print the report",
	Long: `Run a single analysis and print the scored subjects.

Output formats:
  table  colored summary table (default)
  json   the full snapshot including topology
  yaml   the report document
  memo   a rendered markdown memo`,
	Example: `  faultline analyze
  faultline analyze --variant market --topic Gold -o json
  faultline analyze --subjects-file cities.yaml -o memo`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&outputFormat, "output", "o", string(report.FormatTable), "Output format: table, json, yaml or memo")
	addSourceFlags(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if err := setupLog(logLevelFlags, logFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	// stdout carries the report.
	logging.SetOutput(os.Stderr)

	format, err := report.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return analyzeTo(ctx, cmd.OutOrStdout(), cfg, format)
}

// analyzeTo runs one analysis for cfg and renders it to w.
func analyzeTo(ctx context.Context, w io.Writer, cfg *config.Config, format report.Format) error {
	st, err := buildStack(ctx, cfg, nil)
	if err != nil {
		return err
	}
	snap, err := st.orchestrator.Analyze(ctx, cfg.Topic)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return report.Render(w, snap, format)
}
