package model

import "math"

// IndicatorFrame holds per-bar indicator values aligned 1:1 with Series.Bars.
// Undefined values are NaN.
type IndicatorFrame struct {
	RSI        []float64
	MACD       []float64
	MACDSignal []float64
}

// At returns the indicator values at bar i, NaN when out of range.
func (f IndicatorFrame) At(i int) (rsi, macd, signal float64) {
	return valueAt(f.RSI, i), valueAt(f.MACD, i), valueAt(f.MACDSignal, i)
}

func valueAt(vs []float64, i int) float64 {
	if i < 0 || i >= len(vs) {
		return math.NaN()
	}
	return vs[i]
}
