package calculator

import "math"

// RollingMean returns the trailing mean of values over a window of up to
// `window` samples ending at each index. NaN samples are skipped; a position
// is NaN only when its window holds no valid sample.
func RollingMean(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum := 0.0
		count := 0
		for _, v := range values[start : i+1] {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			count++
		}
		if count == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(count)
	}
	return out
}

// TrailingAverageVolume returns the mean of the last `window` volumes ending at
// the final bar. NaN when fewer than two bars exist.
func TrailingAverageVolume(volumes []float64, window int) float64 {
	if len(volumes) < 2 {
		return math.NaN()
	}
	if window < 1 {
		window = 1
	}
	avg := RollingMean(volumes[max(0, len(volumes)-window):], window)
	return avg[len(avg)-1]
}
