package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/moolen/faultline/internal/logging"
	"github.com/moolen/faultline/internal/rationale"
	"github.com/moolen/faultline/internal/scoring"
	"github.com/moolen/faultline/internal/source"
	"github.com/moolen/faultline/internal/subject"
	"github.com/moolen/faultline/internal/topology"
	"github.com/moolen/faultline/internal/verdict"
)

var (
	// ErrBusy is returned when a run is already in flight.
	ErrBusy = errors.New("analysis already running")
	// ErrEmptyTopic is returned for market runs without a topic.
	ErrEmptyTopic = errors.New("market analysis requires a topic")
	// ErrStopped is returned by Trigger after Stop.
	ErrStopped = errors.New("orchestrator stopped")
)

// Config tunes an Orchestrator.
type Config struct {
	// Topic is used by Start and by triggers that pass no topic.
	Topic string
	// HistorySize bounds the run history behind Trend. Default: 10.
	HistorySize int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithVerdicts enables parallel verdict enrichment.
func WithVerdicts(a *verdict.Adapter) Option {
	return func(o *Orchestrator) { o.verdicts = a }
}

// WithClock overrides the clock stamped on snapshots.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithRunIDs overrides the run ID generator.
func WithRunIDs(next func() string) Option {
	return func(o *Orchestrator) { o.nextID = next }
}

// WithMetrics records run metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// Orchestrator owns the current snapshot, the selection and the run history.
// It implements lifecycle.Component.
type Orchestrator struct {
	src      source.Source
	variant  subject.Variant
	policy   scoring.Policy
	explain  *rationale.Generator
	layout   *topology.Builder
	verdicts *verdict.Adapter
	cfg      Config

	now     func() time.Time
	nextID  func() string
	metrics *Metrics
	tracer  trace.Tracer
	logger  *logging.Logger

	snapshot atomic.Pointer[Snapshot]
	busy     atomic.Bool

	mu       sync.RWMutex
	selected string
	history  []float64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an orchestrator over src. The variant follows the source.
func New(src source.Source, cfg Config, opts ...Option) (*Orchestrator, error) {
	if src == nil {
		return nil, errors.New("source cannot be nil")
	}
	variant := src.Variant()
	policy, err := scoring.PolicyFor(variant)
	if err != nil {
		return nil, err
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 10
	}

	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		src:     src,
		variant: variant,
		policy:  policy,
		explain: rationale.NewGenerator(variant),
		layout:  topology.NewBuilder(variant),
		cfg:     cfg,
		now:     time.Now,
		nextID:  uuid.NewString,
		tracer:  otel.Tracer("faultline/analysis"),
		logger:  logging.GetLogger("analysis.orchestrator"),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.snapshot.Store(emptySnapshot(variant))
	return o, nil
}

// Name implements lifecycle.Component.
func (o *Orchestrator) Name() string { return "analysis-orchestrator" }

// Start runs the initial analysis with the configured topic. A failed run is
// logged and leaves the empty snapshot in place; it does not fail startup.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.logger.Info("Starting %s analysis from %s", o.variant, o.src.Name())
	if _, err := o.Analyze(ctx, o.cfg.Topic); err != nil {
		o.logger.ErrorWithErr("Initial analysis failed", err)
	}
	return nil
}

// Stop cancels background runs and waits for them to finish.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.cancel()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Variant returns the analyzed variant.
func (o *Orchestrator) Variant() subject.Variant { return o.variant }

// Busy reports whether a run is in flight.
func (o *Orchestrator) Busy() bool { return o.busy.Load() }

// Snapshot returns the latest published snapshot, or an empty one before the
// first run. Never nil.
func (o *Orchestrator) Snapshot() *Snapshot { return o.snapshot.Load() }

// Analyze runs the pipeline synchronously and returns the published
// snapshot. On failure the previous snapshot stays current.
func (o *Orchestrator) Analyze(ctx context.Context, topic string) (*Snapshot, error) {
	topic, err := o.resolveTopic(topic)
	if err != nil {
		return nil, err
	}
	if !o.acquire() {
		return nil, ErrBusy
	}
	defer o.release()
	return o.run(ctx, topic)
}

// Trigger starts a run in the background. It returns ErrEmptyTopic for an
// invalid topic, ErrStopped after Stop and ErrBusy when a run is in flight.
func (o *Orchestrator) Trigger(topic string) error {
	topic, err := o.resolveTopic(topic)
	if err != nil {
		return err
	}
	if o.ctx.Err() != nil {
		return ErrStopped
	}
	if !o.acquire() {
		o.logger.Info("Ignoring trigger: %v", ErrBusy)
		return ErrBusy
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.release()
		if _, err := o.run(o.ctx, topic); err != nil && !errors.Is(err, context.Canceled) {
			o.logger.ErrorWithErr("Background analysis failed", err)
		}
	}()
	return nil
}

func (o *Orchestrator) resolveTopic(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = strings.TrimSpace(o.cfg.Topic)
	}
	if o.variant == subject.Market && topic == "" {
		return "", ErrEmptyTopic
	}
	return topic, nil
}

func (o *Orchestrator) acquire() bool {
	if !o.busy.CompareAndSwap(false, true) {
		o.metrics.observeRun(outcomeBusy, -1)
		return false
	}
	o.metrics.setBusy(true)
	return true
}

func (o *Orchestrator) release() {
	o.metrics.setBusy(false)
	o.busy.Store(false)
}

func (o *Orchestrator) run(ctx context.Context, topic string) (*Snapshot, error) {
	runID := o.nextID()
	begin := time.Now()
	logger := o.logger.WithField("run_id", runID)

	ctx, span := o.tracer.Start(ctx, "analysis.run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("variant", string(o.variant)),
		attribute.String("topic", topic),
	))
	defer span.End()
	logger = logger.WithContext(ctx)

	snap, err := o.build(ctx, runID, topic)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		o.metrics.observeRun(outcomeError, time.Since(begin).Seconds())
		logger.ErrorWithErr("Analysis run failed, keeping previous snapshot", err)
		return nil, err
	}

	o.publish(snap)
	o.metrics.observeRun(outcomeSuccess, time.Since(begin).Seconds())
	logger.InfoWithFields("Analysis run published",
		logging.Field("subjects", len(snap.Subjects)),
		logging.Field("topic", topic),
		logging.Field("duration_ms", time.Since(begin).Milliseconds()),
	)
	return snap, nil
}

func (o *Orchestrator) build(ctx context.Context, runID, topic string) (*Snapshot, error) {
	fetched, err := o.src.Fetch(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("fetch from %s: %w", o.src.Name(), err)
	}
	subjects := make([]subject.Subject, len(fetched))
	for i, s := range fetched {
		s.Metrics = s.Metrics.Clone()
		subjects[i] = s
	}
	subject.Renumber(subjects)

	var verdicts []verdict.Verdict
	if o.verdicts != nil {
		verdicts = o.verdicts.FetchAll(ctx, subjects)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	explain := o.explain.ForTopic(topic)
	results := scoring.ScoreAll(o.policy, subjects)
	byID := make(map[string]scoring.ScoreResult, len(subjects))
	for i := range results {
		if verdicts != nil {
			v := verdicts[i]
			results[i].Verdict = &v
		}
		results[i].Rationale = explain.Explain(subjects[i], results[i], subject.Previous(subjects, i))
		byID[subjects[i].ID] = results[i]
	}

	nodes, edges := o.layout.Build(subjects, results)

	return &Snapshot{
		RunID:       runID,
		Variant:     o.variant,
		Topic:       topic,
		GeneratedAt: o.now(),
		Subjects:    subjects,
		Results:     byID,
		Nodes:       nodes,
		Edges:       edges,
	}, nil
}

func (o *Orchestrator) publish(snap *Snapshot) {
	o.snapshot.Store(snap)
	o.metrics.publish(snap)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = append(o.history, snap.MeanScore())
	if over := len(o.history) - o.cfg.HistorySize; over > 0 {
		o.history = append(o.history[:0:0], o.history[over:]...)
	}
	if o.selected == "" && len(snap.Subjects) > 0 {
		o.selected = snap.Subjects[0].ID
	}
}

// Select stores id as the current selection. It is resolved on read, so it
// may name a subject that a later run produces.
func (o *Orchestrator) Select(id string) {
	o.mu.Lock()
	o.selected = strings.TrimSpace(id)
	o.mu.Unlock()
}

// Selection resolves the current selection against the latest snapshot.
// Unknown ids yield the placeholder result.
func (o *Orchestrator) Selection() Selection {
	o.mu.RLock()
	id := o.selected
	o.mu.RUnlock()
	return newSelection(o.Snapshot(), id)
}

// Trend summarizes the mean score across recent runs.
func (o *Orchestrator) Trend() Trend {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return computeTrend(o.history)
}
