package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/faultline/internal/config"
	"github.com/moolen/faultline/internal/subject"
)

func TestGovernanceMock(t *testing.T) {
	subjects, err := NewGovernanceMock().Fetch(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, subjects, 4)

	names := make([]string, len(subjects))
	for i, s := range subjects {
		names[i] = s.Name
		assert.Equal(t, i, s.Ordinal)
	}
	assert.Equal(t, []string{"Mumbai", "Delhi", "Bangalore", "Hyderabad"}, names)
	assert.Equal(t, subject.Metrics{"aqi": 380, "transport": 50, "crime": 58, "poverty": 15, "growth": 6.8}, subjects[1].Metrics)

	// Callers own the returned metrics.
	subjects[1].Metrics["aqi"] = 0
	again, err := NewGovernanceMock().Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 380.0, again[1].Metrics.Get("aqi"))
}

func TestMarketMockBaseValues(t *testing.T) {
	subjects, err := NewMarketMock(MarketOptions{}).Fetch(context.Background(), "Gold")
	require.NoError(t, err)
	require.Len(t, subjects, 6)

	assert.Equal(t, "2021", subjects[0].ID)
	assert.Equal(t, "2026", subjects[5].ID)
	assert.Equal(t, 100.0, subjects[0].Metrics.Get(subject.MetricValue))
	assert.InDelta(t, 8994.0, subjects[0].Metrics.Get(subject.MetricValueINR), 1e-9)
	assert.Equal(t, 440.0, subjects[5].Metrics.Get(subject.MetricValue))
}

func TestMarketMockSeeded(t *testing.T) {
	opts := MarketOptions{Randomize: true, Seed: 7}
	a, err := NewMarketMock(opts).Fetch(context.Background(), "Gold")
	require.NoError(t, err)
	b, err := NewMarketMock(opts).Fetch(context.Background(), "Gold")
	require.NoError(t, err)
	assert.Equal(t, a, b, "equal seeds give equal series")

	for i, s := range a {
		v := s.Metrics.Get(subject.MetricValue)
		assert.GreaterOrEqual(t, v, years[i].base, "year %s", s.ID)
		assert.Less(t, v, years[i].base+years[i].spread, "year %s", s.ID)
		assert.InDelta(t, v*DefaultUSDToINR, s.Metrics.Get(subject.MetricValueINR), 1e-9)
	}
}

func TestMarketMockClockSeed(t *testing.T) {
	m := NewMarketMock(MarketOptions{Randomize: true, USDToINR: 2})
	m.now = func() time.Time { return time.Unix(0, 42) }

	a, err := m.Fetch(context.Background(), "Oil")
	require.NoError(t, err)
	b, err := m.Fetch(context.Background(), "Oil")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.InDelta(t, a[0].Metrics.Get(subject.MetricValue)*2, a[0].Metrics.Get(subject.MetricValueINR), 1e-9)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, src := range []Source{NewGovernanceMock(), NewMarketMock(MarketOptions{})} {
		_, err := src.Fetch(ctx, "")
		assert.ErrorIs(t, err, context.Canceled, src.Name())
	}
}

func TestWithLatency(t *testing.T) {
	g := NewGovernanceMock()
	assert.Same(t, g, WithLatency(g, 0))

	src := WithLatency(NewGovernanceMock(), 20*time.Millisecond)
	start := time.Now()
	subjects, err := src.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, subjects, 4)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, subject.Governance, src.Variant())

	slow := WithLatency(NewGovernanceMock(), time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = slow.Fetch(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subjects.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`version: "1.0"
variant: market
subjects:
  - {id: "2021", name: "2021", metrics: {value: 100}}
  - {id: "2022", name: "2022", metrics: {value: 150}}
  - {id: "2023", name: "2023", metrics: {value: 120, value_inr: 5000}}
`), 0600))

	subjects, err := NewFileSource(path, subject.Market).Fetch(context.Background(), "Gold")
	require.NoError(t, err)
	require.Len(t, subjects, 3)
	assert.Equal(t, 1, subjects[1].Ordinal)
	assert.Equal(t, 150.0, subjects[1].Metrics.Get(subject.MetricValue))
	assert.InDelta(t, 100*DefaultUSDToINR, subjects[0].Metrics.Get(subject.MetricValueINR), 1e-9)
	assert.Equal(t, 5000.0, subjects[2].Metrics.Get(subject.MetricValueINR), "explicit value_inr wins")

	subjects, err = NewFileSource(path, subject.Market).WithUSDToINR(2).Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 300.0, subjects[1].Metrics.Get(subject.MetricValueINR))

	_, err = NewFileSource(path, subject.Governance).Fetch(context.Background(), "")
	assert.True(t, errors.Is(err, ErrVariantMismatch))

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.yaml"), subject.Market).Fetch(context.Background(), "")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	cfg := config.Default()
	src, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "governance-mock", src.Name())

	cfg.Variant = "market"
	cfg.Source.Latency = time.Millisecond
	src, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "market-mock", src.Name())
	assert.Equal(t, subject.Market, src.Variant())

	cfg.Source.Kind = config.SourceFile
	cfg.Source.File = "subjects.yaml"
	src, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "file:subjects.yaml", src.Name())

	cfg.Source.Kind = "kafka"
	_, err = New(cfg)
	assert.Error(t, err)
}
