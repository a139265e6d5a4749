package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/moolen/faultline/internal/analysis"
	"github.com/moolen/faultline/internal/apiserver"
	"github.com/moolen/faultline/internal/config"
	"github.com/moolen/faultline/internal/lifecycle"
	"github.com/moolen/faultline/internal/logging"
	"github.com/moolen/faultline/internal/mcp"
	"github.com/moolen/faultline/internal/tracing"
)

var (
	apiPort      int
	mcpEnabled   bool
	variantFlag  string
	sourceFile   string
	topicFlag    string
	shutdownWait time.Duration
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the faultline server",
	Long: `Start the faultline server. It runs an initial analysis, serves the
latest snapshot over HTTP and, when enabled, exposes the analysis as MCP tools
under /v1/mcp. A file source is re-analyzed whenever the file changes.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().IntVar(&apiPort, "api-port", 0, "Port the API server listens on (overrides server.port)")
	serverCmd.Flags().BoolVar(&mcpEnabled, "mcp-enabled", true, "Expose MCP tools on /v1/mcp (overrides server.mcp_enabled)")
	serverCmd.Flags().DurationVar(&shutdownWait, "shutdown-timeout", 15*time.Second, "Grace period for stopping components")
	addSourceFlags(serverCmd)
}

// addSourceFlags registers the flags that override the analysis source.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&variantFlag, "variant", "", "Variant to analyze: governance or market (overrides variant)")
	cmd.Flags().StringVar(&sourceFile, "subjects-file", "", "Read subjects from this YAML file instead of the mock source")
	cmd.Flags().StringVar(&topicFlag, "topic", "", "Market topic (overrides topic)")
}

// loadConfig reads --config and applies command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("variant") {
		cfg.Variant = variantFlag
	}
	if flags.Changed("subjects-file") {
		cfg.Source.Kind = config.SourceFile
		cfg.Source.File = sourceFile
	}
	if flags.Changed("topic") {
		cfg.Topic = topicFlag
	}
	if flags.Changed("api-port") {
		cfg.Server.Port = apiPort
	}
	if flags.Changed("mcp-enabled") {
		cfg.Server.MCPEnabled = mcpEnabled
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := setupLog(logLevelFlags, logFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.GetLogger("server")
	logger.Info("Starting faultline v%s", Version)
	logger.Debug("Configuration loaded: variant=%s port=%d source=%s", cfg.Variant, cfg.Server.Port, cfg.Source.Kind)

	manager := lifecycle.NewManager()
	manager.SetShutdownTimeout(shutdownWait)

	tracingProvider, err := tracing.NewProvider(cfg.Tracing, Version)
	if err != nil {
		logger.Warn("Failed to initialize tracing (continuing without tracing): %v", err)
		tracingProvider = nil
	}
	if tracingProvider != nil {
		if err := manager.Register(tracingProvider); err != nil {
			return fmt.Errorf("tracing registration error: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := buildStack(ctx, cfg, tracingProvider)
	if err != nil {
		return err
	}
	orch := st.orchestrator

	var orchDeps []lifecycle.Component
	if tracingProvider != nil {
		orchDeps = append(orchDeps, tracingProvider)
	}
	if err := manager.Register(orch, orchDeps...); err != nil {
		return fmt.Errorf("orchestrator registration error: %w", err)
	}

	watcher, err := st.subjectsWatcher()
	if err != nil {
		return fmt.Errorf("failed to create subjects watcher: %w", err)
	}
	if watcher != nil {
		if err := manager.Register(watcher, orch); err != nil {
			return fmt.Errorf("watcher registration error: %w", err)
		}
		logger.Info("Watching %s for changes", cfg.Source.File)
	}

	var mcpServer *server.MCPServer
	if cfg.Server.MCPEnabled {
		mcpServer = mcp.NewServer(orch, Version).MCPServer()
		logger.Info("MCP tools enabled on /v1/mcp")
	}

	apiComponent := apiserver.New(cfg.Server.Port, orch, st.registry, mcpServer)
	if err := manager.Register(apiComponent, orch); err != nil {
		return fmt.Errorf("API server registration error: %w", err)
	}

	logger.Info("All components registered with dependencies")
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("startup error: %w", err)
	}
	logSnapshot(logger, orch.Snapshot())

	logger.Info("Listening on %s", apiComponent.Addr())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutdown signal received, gracefully shutting down...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownWait)
	defer stop()
	if err := manager.Stop(shutdownCtx); err != nil {
		logger.Error("Error during shutdown: %v", err)
	}

	logger.Info("Shutdown complete")
	return nil
}

func logSnapshot(logger *logging.Logger, snap *analysis.Snapshot) {
	if !snap.Published() {
		logger.Warn("No analysis published yet")
		return
	}
	logger.InfoWithFields("Initial analysis published",
		logging.Field("run_id", snap.RunID),
		logging.Field("subjects", len(snap.Subjects)),
		logging.Field("mean_score", snap.MeanScore()),
	)
}
