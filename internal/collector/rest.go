package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"SRSentinel/internal/model"
)

// RESTFetcher implements Fetcher against a plain JSON bars endpoint:
// GET {BaseURL}/api/v1/bars?symbol=..&period=..&interval=.. returning
// [{"timestamp":..,"open":..,"high":..,"low":..,"close":..,"volume":..}].
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	HTTP    *HTTPClient
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    NewHTTPClient(proxyURL, 5),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape of one bar.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (f *RESTFetcher) FetchBars(ctx context.Context, symbol, period, interval string) (*model.RawTable, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("period", period)
	q.Set("interval", interval)
	endpoint := fmt.Sprintf("%s/api/v1/bars?%s", f.BaseURL, q.Encode())

	header := http.Header{}
	if f.APIKey != "" {
		header.Set("Authorization", "Bearer "+f.APIKey)
	}
	body, err := f.HTTP.Get(ctx, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	var bars []restBar
	if err := json.Unmarshal(body, &bars); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}

	table := &model.RawTable{
		Columns: []model.ColumnLabel{{"Open"}, {"High"}, {"Low"}, {"Close"}, {"Volume"}},
		Index:   make([]any, 0, len(bars)),
	}
	for _, b := range bars {
		table.Index = append(table.Index, time.Unix(b.Timestamp, 0).UTC())
		table.Rows = append(table.Rows, []any{b.Open, b.High, b.Low, b.Close, b.Volume})
	}
	return table, nil
}
