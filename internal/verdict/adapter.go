package verdict

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/moolen/faultline/internal/logging"
	"github.com/moolen/faultline/internal/subject"
)

// Config tunes an Adapter.
type Config struct {
	Variant     subject.Variant
	Timeout     time.Duration
	Concurrency int
	CacheTTL    time.Duration
	CacheSize   int
}

// DefaultConfig returns a 15s timeout, unbounded fan-out and no cache.
func DefaultConfig() Config {
	return Config{
		Variant:   subject.Governance,
		Timeout:   15 * time.Second,
		CacheSize: 128,
	}
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithMetrics records call outcomes.
func WithMetrics(m *Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(a *Adapter) { a.tracer = t }
}

// Adapter turns generator replies into verdicts. Exactly one attempt is made
// per call; any failure yields Fallback.
type Adapter struct {
	gen     Generator
	cfg     Config
	cache   *expirable.LRU[string, Verdict]
	metrics *Metrics
	tracer  trace.Tracer
	logger  *logging.Logger
}

// NewAdapter creates an adapter. A nil generator makes every call fall back.
func NewAdapter(gen Generator, cfg Config, opts ...Option) *Adapter {
	a := &Adapter{
		gen:    gen,
		cfg:    cfg,
		tracer: otel.Tracer("faultline/verdict"),
		logger: logging.GetLogger("verdict.adapter"),
	}
	if cfg.CacheTTL > 0 {
		size := cfg.CacheSize
		if size <= 0 {
			size = DefaultConfig().CacheSize
		}
		a.cache = expirable.NewLRU[string, Verdict](size, nil, cfg.CacheTTL)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Fetch returns the verdict for one subject. It never fails.
func (a *Adapter) Fetch(ctx context.Context, name string, metrics subject.Metrics) Verdict {
	if a == nil || a.gen == nil {
		return Fallback(name)
	}

	key := cacheKey(name, metrics)
	if a.cache != nil {
		if v, ok := a.cache.Get(key); ok {
			a.metrics.observe("cached", -1)
			return v
		}
	}

	ctx, span := a.tracer.Start(ctx, "verdict.fetch", trace.WithAttributes(
		attribute.String("subject", name),
		attribute.String("generator", a.gen.Name()),
	))
	defer span.End()

	begin := time.Now()
	v, err := a.attempt(ctx, name, metrics)
	elapsed := time.Since(begin).Seconds()

	if err != nil {
		a.logger.WithContext(ctx).WarnWithFields("verdict unavailable, using fallback",
			logging.Field("subject", name),
			logging.Field("generator", a.gen.Name()),
			logging.Field("error", err.Error()),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fallback")
		a.metrics.observe(string(SourceFallback), elapsed)
		return Fallback(name)
	}

	a.logger.Debug("verdict for %s: %s (%s)", name, v.Compliance, v.PrimaryFault)
	span.SetAttributes(attribute.String("compliance", v.Compliance))
	a.metrics.observe(string(SourceModel), elapsed)
	if a.cache != nil {
		a.cache.Add(key, v)
	}
	return v
}

func (a *Adapter) attempt(ctx context.Context, name string, metrics subject.Metrics) (v Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("verdict generator panicked: %v", r)
		}
	}()

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	text, err := a.gen.Generate(ctx, BuildPrompt(a.cfg.Variant, name, metrics))
	if err != nil {
		return Verdict{}, err
	}
	return Parse(text)
}

// FetchAll fetches verdicts for all subjects concurrently and waits for every
// call to resolve. The result is index-aligned with subjects.
func (a *Adapter) FetchAll(ctx context.Context, subjects []subject.Subject) []Verdict {
	out := make([]Verdict, len(subjects))

	g, gctx := errgroup.WithContext(ctx)
	if a != nil && a.cfg.Concurrency > 0 {
		g.SetLimit(a.cfg.Concurrency)
	}
	for i, s := range subjects {
		g.Go(func() error {
			out[i] = a.Fetch(gctx, s.Label(), s.Metrics)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func cacheKey(name string, m subject.Metrics) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(strings.ToLower(name))
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(m[k], 'g', -1, 64))
	}
	return b.String()
}
