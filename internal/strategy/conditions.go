package strategy

import (
	"math"

	"SRSentinel/internal/model"
)

// snapshot is the state of the decision bar.
type snapshot struct {
	close      float64
	rsi        float64
	macd       float64
	macdSignal float64
	volume     float64
	avgVolume  float64
}

func (s snapshot) indicatorsDefined() bool {
	return !math.IsNaN(s.rsi) && !math.IsNaN(s.macd) && !math.IsNaN(s.macdSignal)
}

// volumeConfirmed reports whether the volume gate passes. An undefined
// average closes the gate.
func (s snapshot) volumeConfirmed(useFilter bool) bool {
	if !useFilter {
		return true
	}
	if math.IsNaN(s.avgVolume) || s.avgVolume <= 0 {
		return false
	}
	return s.volume > s.avgVolume
}

// buyReason returns the reason for a BUY against lvl, or false when any
// condition fails.
func buyReason(s snapshot, lvl model.Level, useFilter bool) (string, bool) {
	if lvl.Kind != model.Support || s.close > lvl.Price*(1+NearLevelBand) {
		return "", false
	}
	if !s.indicatorsDefined() || s.rsi >= OversoldRSI || s.macd <= s.macdSignal {
		return "", false
	}
	if !s.volumeConfirmed(useFilter) {
		return "", false
	}
	return withVolume("RSI oversold + near support + MACD bullish", useFilter), true
}

// sellReason mirrors buyReason for resistance levels.
func sellReason(s snapshot, lvl model.Level, useFilter bool) (string, bool) {
	if lvl.Kind != model.Resistance || s.close < lvl.Price*(1-NearLevelBand) {
		return "", false
	}
	if !s.indicatorsDefined() || s.rsi <= OverboughtRSI || s.macd >= s.macdSignal {
		return "", false
	}
	if !s.volumeConfirmed(useFilter) {
		return "", false
	}
	return withVolume("RSI overbought + near resistance + MACD bearish", useFilter), true
}

func withVolume(reason string, useFilter bool) string {
	if useFilter {
		return reason + " + volume confirmation"
	}
	return reason
}
