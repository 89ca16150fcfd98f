package levels

import (
	"math"
	"sort"

	"SRSentinel/internal/model"
)

// Cluster merges levels of the same kind whose prices lie within tolerance
// (relative to the zone's running mean price) into zones, and keeps the zones
// touched at least minTouches times. Levels are visited in time order, so each
// zone's First/Last are the earliest and latest member timestamps. Zones are
// returned sorted by price ascending.
func Cluster(levels []model.Level, tolerance float64, minTouches int) []model.Zone {
	if minTouches < 1 {
		minTouches = 1
	}
	var zones []model.Zone
	sums := []float64{}

	for _, lvl := range levels {
		matched := -1
		bestDist := math.Inf(1)
		for i, z := range zones {
			if z.Kind != lvl.Kind || z.Price == 0 {
				continue
			}
			dist := math.Abs(lvl.Price-z.Price) / math.Abs(z.Price)
			if dist <= tolerance && dist < bestDist {
				matched, bestDist = i, dist
			}
		}
		if matched < 0 {
			zones = append(zones, model.Zone{Kind: lvl.Kind, Price: lvl.Price, Touches: 1, First: lvl.Time, Last: lvl.Time})
			sums = append(sums, lvl.Price)
			continue
		}
		z := &zones[matched]
		sums[matched] += lvl.Price
		z.Touches++
		z.Price = sums[matched] / float64(z.Touches)
		if lvl.Time.Before(z.First) {
			z.First = lvl.Time
		}
		if lvl.Time.After(z.Last) {
			z.Last = lvl.Time
		}
	}

	out := make([]model.Zone, 0, len(zones))
	for _, z := range zones {
		if z.Touches >= minTouches {
			out = append(out, z)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}
