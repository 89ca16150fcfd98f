// Package strategy decides BUY/SELL/HOLD for the most recent bar of a series.
package strategy

import (
	"SRSentinel/internal/calculator"
	"SRSentinel/internal/levels"
	"SRSentinel/internal/model"
)

const (
	// RecentLevels is how many of the latest levels the decision looks at.
	RecentLevels = 5
	// VolumeWindow is the trailing window for the average volume.
	VolumeWindow = 20
	// NearLevelBand is the relative distance counted as "near" a level.
	NearLevelBand = 0.01

	OversoldRSI   = 30.0
	OverboughtRSI = 70.0

	HoldReason = "no strong signal"
)

// Evaluate classifies the last bar of series against the most recent levels.
// Every level that qualifies yields its own BUY or SELL; when none does, a
// single HOLD is returned. The series must carry its indicator frame.
func Evaluate(series *model.Series, lvls []model.Level, useVolumeFilter bool) []model.Signal {
	if series.Len() == 0 {
		return nil
	}
	last := series.Len() - 1
	bar := series.Bars[last]
	rsi, macd, macdSignal := series.Indicators.At(last)
	s := snapshot{
		close:      bar.Close,
		rsi:        rsi,
		macd:       macd,
		macdSignal: macdSignal,
		volume:     bar.Volume,
		avgVolume:  calculator.TrailingAverageVolume(series.Volumes(), VolumeWindow),
	}

	newSignal := func(kind model.SignalKind, reason string, lvl *model.Level) model.Signal {
		return model.Signal{
			Kind:       kind,
			Reason:     reason,
			Price:      s.close,
			Time:       bar.Time,
			RSI:        s.rsi,
			MACD:       s.macd,
			MACDSignal: s.macdSignal,
			Volume:     s.volume,
			AvgVolume:  s.avgVolume,
			Level:      lvl,
		}
	}

	var signals []model.Signal
	for _, lvl := range levels.Recent(lvls, RecentLevels) {
		if reason, ok := buyReason(s, lvl, useVolumeFilter); ok {
			signals = append(signals, newSignal(model.SignalBuy, reason, &lvl))
		}
		if reason, ok := sellReason(s, lvl, useVolumeFilter); ok {
			signals = append(signals, newSignal(model.SignalSell, reason, &lvl))
		}
	}

	if len(signals) == 0 {
		signals = append(signals, newSignal(model.SignalHold, HoldReason, nil))
	}
	return signals
}
