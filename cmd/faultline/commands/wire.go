package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/moolen/faultline/internal/analysis"
	"github.com/moolen/faultline/internal/config"
	"github.com/moolen/faultline/internal/logging"
	"github.com/moolen/faultline/internal/source"
	"github.com/moolen/faultline/internal/tracing"
	"github.com/moolen/faultline/internal/verdict"
)

// stack is the analysis pipeline shared by the server, analyze and mcp
// commands.
type stack struct {
	cfg          *config.Config
	registry     *prometheus.Registry
	source       source.Source
	adapter      *verdict.Adapter
	orchestrator *analysis.Orchestrator
}

// buildStack wires source, verdict adapter and orchestrator from cfg. tp may
// be nil, in which case spans go to the global provider.
func buildStack(ctx context.Context, cfg *config.Config, tp *tracing.Provider) (*stack, error) {
	logger := logging.GetLogger("server")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	src, err := source.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}
	logger.Info("Using %s source %s", src.Variant(), src.Name())

	gen, err := verdict.NewGenerator(ctx, cfg.Verdict)
	if err != nil {
		return nil, fmt.Errorf("failed to create verdict generator: %w", err)
	}
	generatorName := "fallback"
	if gen != nil {
		generatorName = gen.Name()
	}
	logger.Info("Verdict generator: %s", generatorName)

	verdictOpts := []verdict.Option{verdict.WithMetrics(verdict.NewMetrics(registry, generatorName))}
	analysisOpts := []analysis.Option{
		analysis.WithMetrics(analysis.NewMetrics(registry, string(src.Variant()))),
	}
	if tp != nil {
		verdictOpts = append(verdictOpts, verdict.WithTracer(tp.Tracer("faultline/verdict")))
		analysisOpts = append(analysisOpts, analysis.WithTracer(tp.Tracer("faultline/analysis")))
	}

	adapter := verdict.NewAdapter(gen, verdict.Config{
		Variant:     src.Variant(),
		Timeout:     cfg.Verdict.Timeout,
		Concurrency: cfg.Verdict.Concurrency,
		CacheTTL:    cfg.Verdict.CacheTTL,
		CacheSize:   cfg.Verdict.CacheSize,
	}, verdictOpts...)

	orch, err := analysis.New(src, analysis.Config{
		Topic:       cfg.Topic,
		HistorySize: cfg.Analysis.HistorySize,
	}, append(analysisOpts, analysis.WithVerdicts(adapter))...)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	return &stack{
		cfg:          cfg,
		registry:     registry,
		source:       src,
		adapter:      adapter,
		orchestrator: orch,
	}, nil
}

// subjectsWatcher re-runs the analysis when the subjects file changes. It
// returns nil for sources that are not file backed.
func (s *stack) subjectsWatcher() (*config.Watcher, error) {
	if s.cfg.Source.Kind != config.SourceFile {
		return nil, nil
	}
	path := s.cfg.Source.File
	return config.NewWatcher(config.WatcherConfig{
		FilePath: path,
		Debounce: s.cfg.Analysis.WatchDebounce,
	}, func() error {
		if _, err := config.LoadSubjectsFile(path); err != nil {
			return fmt.Errorf("not re-analyzing: %w", err)
		}
		if err := s.orchestrator.Trigger(""); err != nil && !errors.Is(err, analysis.ErrBusy) {
			return err
		}
		return nil
	})
}
