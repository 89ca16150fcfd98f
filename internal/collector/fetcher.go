package collector

import (
	"context"

	"SRSentinel/internal/model"
)

// Fetcher retrieves a raw OHLCV table for a symbol. period and interval use
// Yahoo-style spellings ("6mo", "1d"); sources may ignore them.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol, period, interval string) (*model.RawTable, error)
	Name() string
}
