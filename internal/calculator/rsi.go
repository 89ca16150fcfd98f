package calculator

import "math"

// rsiEpsilon keeps the ratio finite when there were no losses in the window.
const rsiEpsilon = 1e-6

// ComputeRSI returns the RSI for every close. Gains and losses are smoothed
// with a simple rolling mean of `period` (minimum window 1), so values are
// defined as soon as one price change exists. The first value is NaN.
func ComputeRSI(closes []float64, period int) []float64 {
	if len(closes) == 0 {
		return []float64{}
	}
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	gains[0] = math.NaN()
	losses[0] = math.NaN()
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	avgGain := RollingMean(gains, period)
	avgLoss := RollingMean(losses, period)

	rsi := make([]float64, len(closes))
	for i := range closes {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			rsi[i] = math.NaN()
			continue
		}
		rs := avgGain[i] / (avgLoss[i] + rsiEpsilon)
		rsi[i] = 100.0 - 100.0/(1.0+rs)
	}
	return rsi
}
