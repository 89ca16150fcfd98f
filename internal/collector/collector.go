package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SRSentinel/internal/analysis"
	"SRSentinel/internal/metrics"
	"SRSentinel/internal/model"

	"github.com/rs/zerolog/log"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Count int
	Bars  map[string][]model.Bar // per-symbol bars; falls back to generated data
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, symbol, _, _ string) (*model.RawTable, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return TableFromBars(bars), nil
	}
	return TableFromBars(generateMockBars(m.Price, m.Count)), nil
}

func generateMockBars(basePrice float64, count int) []model.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// TableFromBars converts typed bars into a RawTable indexed by bar time.
func TableFromBars(bars []model.Bar) *model.RawTable {
	table := &model.RawTable{
		Columns: []model.ColumnLabel{{"Open"}, {"High"}, {"Low"}, {"Close"}, {"Volume"}},
		Index:   make([]any, len(bars)),
		Rows:    make([][]any, len(bars)),
	}
	for i, b := range bars {
		table.Index[i] = b.Time
		table.Rows[i] = []any{b.Open, b.High, b.Low, b.Close, b.Volume}
	}
	return table
}

// Collector fetches market data for a symbol and runs the analysis on it.
type Collector struct {
	Fetcher  Fetcher
	Period   string
	Interval string
	Config   analysis.Config
	Metrics  *metrics.Metrics
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, period, interval string, cfg analysis.Config, m *metrics.Metrics) *Collector {
	return &Collector{Fetcher: fetcher, Period: period, Interval: interval, Config: cfg, Metrics: m}
}

// Analyze fetches the symbol's bars and returns the analysis result.
func (c *Collector) Analyze(ctx context.Context, symbol string) (*analysis.Result, error) {
	start := time.Now()
	raw, err := c.Fetcher.FetchBars(ctx, symbol, c.Period, c.Interval)
	c.Metrics.ObserveFetch(time.Since(start))
	if err != nil {
		c.Metrics.ObserveRun(metrics.ResultFetchError, 0)
		return nil, fmt.Errorf("fetch %s from %s: %w", symbol, c.Fetcher.Name(), err)
	}

	start = time.Now()
	res, err := analysis.Run(symbol, raw, c.Config)
	if err != nil {
		c.Metrics.ObserveRun(runResult(err), 0)
		return nil, fmt.Errorf("analyze %s: %w", symbol, err)
	}
	c.Metrics.ObserveRun(metrics.ResultOK, time.Since(start))
	for _, sig := range res.Signals {
		c.Metrics.CountSignal(string(sig.Kind))
	}

	log.Debug().
		Str("symbol", symbol).
		Int("bars", res.Series.Len()).
		Int("levels", len(res.Levels)).
		Int("signals", len(res.Signals)).
		Msg("analysis complete")
	return res, nil
}

func runResult(err error) string {
	var empty *analysis.EmptyInputError
	var invalid *analysis.ValidationError
	switch {
	case errors.As(err, &empty):
		return metrics.ResultEmpty
	case errors.As(err, &invalid):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
