package source

import (
	"context"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/moolen/faultline/internal/subject"
)

// DefaultUSDToINR converts market mock values to rupees.
const DefaultUSDToINR = 89.94

type city struct {
	id, name string
	metrics  subject.Metrics
}

var cities = []city{
	{"mumbai", "Mumbai", subject.Metrics{"aqi": 160, "transport": 55, "crime": 42, "poverty": 18, "growth": 7.5}},
	{"delhi", "Delhi", subject.Metrics{"aqi": 380, "transport": 50, "crime": 58, "poverty": 15, "growth": 6.8}},
	{"bangalore", "Bangalore", subject.Metrics{"aqi": 95, "transport": 58, "crime": 35, "poverty": 10, "growth": 8.2}},
	{"hyderabad", "Hyderabad", subject.Metrics{"aqi": 110, "transport": 38, "crime": 30, "poverty": 12, "growth": 9.1}},
}

// GovernanceMock returns the four fixed cities. The topic is ignored.
type GovernanceMock struct{}

// NewGovernanceMock creates the governance mock source.
func NewGovernanceMock() *GovernanceMock { return &GovernanceMock{} }

// Fetch implements Source.
func (GovernanceMock) Fetch(ctx context.Context, _ string) ([]subject.Subject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]subject.Subject, len(cities))
	for i, c := range cities {
		out[i] = subject.Subject{ID: c.id, Name: c.name, Metrics: c.metrics.Clone()}
	}
	return subject.Renumber(out), nil
}

// Variant implements Source.
func (GovernanceMock) Variant() subject.Variant { return subject.Governance }

// Name implements Source.
func (GovernanceMock) Name() string { return "governance-mock" }

type year struct {
	year         int
	base, spread float64
}

var years = []year{
	{2021, 100, 20},
	{2022, 250, 50},
	{2023, 210, 30},
	{2024, 115, 20},
	{2025, 380, 60},
	{2026, 440, 40},
}

// MarketOptions tunes MarketMock.
type MarketOptions struct {
	// Randomize draws each value uniformly from [base, base+spread).
	Randomize bool
	// Seed fixes the draw. A fresh generator is seeded per Fetch, so equal
	// seeds give equal series. 0 seeds from the clock.
	Seed     int64
	USDToINR float64
}

// MarketMock returns a six-year value series for any topic.
type MarketMock struct {
	opts MarketOptions
	now  func() time.Time
}

// NewMarketMock creates the market mock source.
func NewMarketMock(opts MarketOptions) *MarketMock {
	if opts.USDToINR <= 0 {
		opts.USDToINR = DefaultUSDToINR
	}
	return &MarketMock{opts: opts, now: time.Now}
}

// Fetch implements Source.
func (m *MarketMock) Fetch(ctx context.Context, _ string) ([]subject.Subject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rng *rand.Rand
	if m.opts.Randomize {
		seed := uint64(m.opts.Seed)
		if seed == 0 {
			seed = uint64(m.now().UnixNano())
		}
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	out := make([]subject.Subject, len(years))
	for i, y := range years {
		v := y.base
		if rng != nil {
			v += rng.Float64() * y.spread
		}
		label := strconv.Itoa(y.year)
		out[i] = subject.Subject{
			ID:   label,
			Name: label,
			Metrics: subject.Metrics{
				subject.MetricValue:    v,
				subject.MetricValueINR: v * m.opts.USDToINR,
			},
		}
	}
	return subject.Renumber(out), nil
}

// Variant implements Source.
func (*MarketMock) Variant() subject.Variant { return subject.Market }

// Name implements Source.
func (*MarketMock) Name() string { return "market-mock" }
