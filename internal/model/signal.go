package model

import "time"

// SignalKind is the trading decision.
type SignalKind string

const (
	SignalBuy  SignalKind = "BUY"
	SignalSell SignalKind = "SELL"
	SignalHold SignalKind = "HOLD"
)

// Directional reports whether the kind is BUY or SELL.
func (k SignalKind) Directional() bool {
	return k == SignalBuy || k == SignalSell
}

// Signal is the output of the signal engine for the most recent bar.
type Signal struct {
	Kind       SignalKind
	Reason     string
	Price      float64 // close of the decision bar
	Time       time.Time
	RSI        float64
	MACD       float64
	MACDSignal float64
	Volume     float64
	AvgVolume  float64
	Level      *Level // triggering level, nil for HOLD
}
