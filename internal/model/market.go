package model

import "time"

// Bar represents a single OHLCV candlestick.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is the normalized unit of analysis: bars in strictly increasing time
// order, with the indicator columns computed for them.
type Series struct {
	Symbol     string
	Bars       []Bar
	Indicators IndicatorFrame
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Last returns the most recent bar. It panics on an empty series.
func (s *Series) Last() Bar { return s.Bars[len(s.Bars)-1] }

// Highs returns the high of every bar.
func (s *Series) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows returns the low of every bar.
func (s *Series) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// Closes returns the close of every bar.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the volume of every bar.
func (s *Series) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// ColumnLabel is a possibly multi-level column label, e.g. ["Close", "TCS.NS"].
type ColumnLabel []string

// RawTable is an untyped tabular OHLCV dataset as returned by a data source.
// Cells may be float64, int, int64, json.Number, string or nil.
type RawTable struct {
	Columns []ColumnLabel
	Index   []any // optional row labels (timestamps); nil when absent
	Rows    [][]any
}

// Len returns the number of rows.
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
