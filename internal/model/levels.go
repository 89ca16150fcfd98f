package model

import "time"

// SwingKind distinguishes local maxima from local minima.
type SwingKind string

const (
	SwingPeak   SwingKind = "peak"
	SwingTrough SwingKind = "trough"
)

// SwingPoint is a local extremum at Index in the series.
type SwingPoint struct {
	Index int
	Kind  SwingKind
	Value float64
}

// LevelKind is either support or resistance.
type LevelKind string

const (
	Support    LevelKind = "support"
	Resistance LevelKind = "resistance"
)

// Level is a support/resistance price taken from a single swing point.
type Level struct {
	Kind  LevelKind
	Price float64
	Time  time.Time
}

// Zone groups levels of one kind that sit within a price tolerance of each other.
type Zone struct {
	Kind    LevelKind
	Price   float64 // mean price of the member levels
	Touches int
	First   time.Time
	Last    time.Time
}
