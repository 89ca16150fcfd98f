package levels

import (
	"sort"

	"SRSentinel/internal/model"
)

// FindPeaks returns the ascending indices of local maxima in values such that
// no two returned indices are closer than distance.
//
// A flat top counts as one maximum located at its middle sample; the first and
// last samples are never peaks. When two maxima conflict, the higher one wins;
// among equal heights the later index wins.
func FindPeaks(values []float64, distance int) []int {
	if distance < 1 {
		distance = 1
	}
	peaks := localMaxima(values)
	if distance == 1 || len(peaks) < 2 {
		return peaks
	}

	byHeight := make([]int, len(peaks))
	for i := range byHeight {
		byHeight[i] = i
	}
	sort.SliceStable(byHeight, func(a, b int) bool {
		return values[peaks[byHeight[a]]] < values[peaks[byHeight[b]]]
	})

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}
	for i := len(byHeight) - 1; i >= 0; i-- {
		j := byHeight[i]
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < distance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(peaks) && peaks[k]-peaks[j] < distance; k++ {
			keep[k] = false
		}
	}

	out := peaks[:0]
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

func localMaxima(values []float64) []int {
	peaks := []int{}
	last := len(values) - 1
	for i := 1; i < last; i++ {
		if values[i-1] >= values[i] {
			continue
		}
		ahead := i + 1
		for ahead < last && values[ahead] == values[i] {
			ahead++
		}
		if values[ahead] < values[i] {
			peaks = append(peaks, (i+ahead-1)/2)
			i = ahead
		}
	}
	return peaks
}

// FindSwings locates peaks of highs and troughs of lows under the same
// minimum separation.
func FindSwings(highs, lows []float64, distance int) (peaks, troughs []model.SwingPoint) {
	for _, idx := range FindPeaks(highs, distance) {
		peaks = append(peaks, model.SwingPoint{Index: idx, Kind: model.SwingPeak, Value: highs[idx]})
	}

	negated := make([]float64, len(lows))
	for i, v := range lows {
		negated[i] = -v
	}
	for _, idx := range FindPeaks(negated, distance) {
		troughs = append(troughs, model.SwingPoint{Index: idx, Kind: model.SwingTrough, Value: lows[idx]})
	}
	return peaks, troughs
}
