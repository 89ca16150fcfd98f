package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"SRSentinel/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public chart API.
type YahooFetcher struct {
	BaseURL   string
	HTTP      *HTTPClient
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		HTTP:    NewHTTPClient(proxyURL, 2),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"NIFTY":  "^NSEI",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []any `json:"open"`
					High   []any `json:"high"`
					Low    []any `json:"low"`
					Close  []any `json:"close"`
					Volume []any `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchBars downloads the chart for symbol. Null quotes (holidays, halted
// sessions) are kept as nil cells and dropped during normalization. An empty
// result is returned as an empty table, not an error.
func (f *YahooFetcher) FetchBars(ctx context.Context, symbol, period, interval string) (*model.RawTable, error) {
	if period == "" {
		period = "6mo"
	}
	if interval == "" {
		interval = "1d"
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), url.QueryEscape(interval), url.QueryEscape(period))

	body, err := f.HTTP.Get(ctx, u, http.Header{"User-Agent": []string{"Mozilla/5.0"}})
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}

	var chart yahooChart
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}

	table := &model.RawTable{
		Columns: []model.ColumnLabel{{"Open"}, {"High"}, {"Low"}, {"Close"}, {"Volume"}},
		Index:   []any{},
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return table, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	for i, ts := range result.Timestamp {
		table.Index = append(table.Index, time.Unix(ts, 0).UTC())
		table.Rows = append(table.Rows, []any{
			at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i), at(quote.Volume, i),
		})
	}
	return table, nil
}

func at(vs []any, i int) any {
	if i < len(vs) {
		return vs[i]
	}
	return nil
}
