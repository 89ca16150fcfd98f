// Package analysis runs the support/resistance and signal pipeline over one
// OHLCV dataset.
package analysis

import (
	"fmt"

	"SRSentinel/internal/calculator"
	"SRSentinel/internal/levels"
	"SRSentinel/internal/model"
	"SRSentinel/internal/strategy"
)

// Result is the output of one analysis run.
type Result struct {
	Levels  []model.Level
	Zones   []model.Zone
	Series  *model.Series
	Signals []model.Signal
}

// Run normalizes raw, extracts levels, computes indicators and evaluates the
// last bar. It holds no state between calls.
func Run(symbol string, raw *model.RawTable, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("analysis config: %w", err)
	}
	series, err := Normalize(symbol, raw)
	if err != nil {
		return nil, err
	}

	peaks, troughs := levels.FindSwings(series.Highs(), series.Lows(), cfg.Distance)
	lvls := levels.Extract(series, peaks, troughs)

	closes := series.Closes()
	macd, signal := calculator.ComputeMACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	series.Indicators = model.IndicatorFrame{
		RSI:        calculator.ComputeRSI(closes, cfg.RSIPeriod),
		MACD:       macd,
		MACDSignal: signal,
	}

	return &Result{
		Levels:  lvls,
		Zones:   levels.Cluster(lvls, cfg.Tolerance, cfg.MinTouches),
		Series:  series,
		Signals: strategy.Evaluate(series, lvls, cfg.UseVolumeFilter),
	}, nil
}

// Latest returns the indicator values of the last bar.
func (r *Result) Latest() (bar model.Bar, rsi, macd, signal float64) {
	last := r.Series.Len() - 1
	rsi, macd, signal = r.Series.Indicators.At(last)
	return r.Series.Bars[last], rsi, macd, signal
}
