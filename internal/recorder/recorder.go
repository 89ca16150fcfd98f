package recorder

import (
	"time"

	"SRSentinel/internal/analysis"
)

// RunSnapshot holds one analysis run for the history tables.
type RunSnapshot struct {
	Symbol   string
	Interval string
	Result   *analysis.Result
	RanAt    time.Time
}

// AlertEvent records one alert delivered to the notification channels.
type AlertEvent struct {
	RunID     int64
	Symbol    string
	Kind      string // "BUY", "SELL" or "HOLD"
	Price     float64
	Reason    string
	Delivered int // number of channels that accepted the alert
	SentAt    time.Time
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordRun(snap *RunSnapshot) (int64, error)
	RecordAlert(evt *AlertEvent) error
	Close() error
}
