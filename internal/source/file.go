package source

import (
	"context"
	"fmt"

	"github.com/moolen/faultline/internal/config"
	"github.com/moolen/faultline/internal/subject"
)

// FileSource reads subjects from a YAML subjects file on every Fetch, so
// edits are picked up by the next run.
type FileSource struct {
	path     string
	variant  subject.Variant
	usdToINR float64
}

// NewFileSource creates a file source expecting subjects of variant.
func NewFileSource(path string, variant subject.Variant) *FileSource {
	return &FileSource{path: path, variant: variant, usdToINR: DefaultUSDToINR}
}

// WithUSDToINR sets the rate used to derive value_inr for market subjects
// that only carry value. Non-positive rates are ignored.
func (f *FileSource) WithUSDToINR(rate float64) *FileSource {
	if rate > 0 {
		f.usdToINR = rate
	}
	return f
}

// Fetch implements Source.
func (f *FileSource) Fetch(ctx context.Context, _ string) ([]subject.Subject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := config.LoadSubjectsFile(f.path)
	if err != nil {
		return nil, err
	}
	v, err := subject.ParseVariant(file.Variant)
	if err != nil {
		return nil, err
	}
	if v != f.variant {
		return nil, fmt.Errorf("%w: %s declares %s, expected %s", ErrVariantMismatch, f.path, v, f.variant)
	}
	if f.variant == subject.Market {
		for i := range file.Subjects {
			m := file.Subjects[i].Metrics
			if m.Has(subject.MetricValue) && !m.Has(subject.MetricValueINR) {
				m[subject.MetricValueINR] = m.Get(subject.MetricValue) * f.usdToINR
			}
		}
	}
	return file.Subjects, nil
}

// Variant implements Source.
func (f *FileSource) Variant() subject.Variant { return f.variant }

// Name implements Source.
func (f *FileSource) Name() string { return "file:" + f.path }

// Path returns the watched file.
func (f *FileSource) Path() string { return f.path }

// New builds the source configured in cfg.
func New(cfg *config.Config) (Source, error) {
	variant, err := cfg.ParsedVariant()
	if err != nil {
		return nil, err
	}

	var src Source
	switch cfg.Source.Kind {
	case config.SourceFile:
		src = NewFileSource(cfg.Source.File, variant).WithUSDToINR(cfg.Source.Market.USDToINR)
	case config.SourceMock, "":
		if variant == subject.Market {
			src = NewMarketMock(MarketOptions{
				Randomize: cfg.Source.Market.Randomize,
				Seed:      cfg.Source.Market.Seed,
				USDToINR:  cfg.Source.Market.USDToINR,
			})
		} else {
			src = NewGovernanceMock()
		}
	default:
		return nil, fmt.Errorf("unsupported source kind %q", cfg.Source.Kind)
	}
	return WithLatency(src, cfg.Source.Latency), nil
}
