package calculator

// EMA returns the exponential moving average of values for the given span,
// seeded with the first value (alpha = 2/(span+1), no bias adjustment).
func EMA(values []float64, span int) []float64 {
	if span < 1 {
		span = 1
	}
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// ComputeMACD returns the MACD line (fast EMA - slow EMA) and its signal line.
// Both are defined from the first close onward.
func ComputeMACD(closes []float64, fast, slow, signal int) (macd, signalLine []float64) {
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	return macd, EMA(macd, signal)
}
