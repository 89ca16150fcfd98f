// Package levels turns swing points into support and resistance levels.
package levels

import (
	"sort"

	"SRSentinel/internal/model"
)

// Extract builds one level per swing point: resistance at the high of each
// peak, support at the low of each trough. The result is sorted by time;
// levels sharing a timestamp keep peaks before troughs.
func Extract(series *model.Series, peaks, troughs []model.SwingPoint) []model.Level {
	out := make([]model.Level, 0, len(peaks)+len(troughs))
	for _, p := range peaks {
		bar := series.Bars[p.Index]
		out = append(out, model.Level{Kind: model.Resistance, Price: bar.High, Time: bar.Time})
	}
	for _, t := range troughs {
		bar := series.Bars[t.Index]
		out = append(out, model.Level{Kind: model.Support, Price: bar.Low, Time: bar.Time})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// Recent returns the last n levels (all of them when fewer exist).
func Recent(levels []model.Level, n int) []model.Level {
	if n <= 0 {
		return nil
	}
	if len(levels) <= n {
		return levels
	}
	return levels[len(levels)-n:]
}
