package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"SRSentinel/internal/alertstate"
	"SRSentinel/internal/analysis"
	"SRSentinel/internal/collector"
	"SRSentinel/internal/model"
	"SRSentinel/internal/notifier"
	"SRSentinel/internal/recorder"
	"SRSentinel/internal/watchlist"
)

type captureSink struct {
	msgs []notifier.Message
	err  error
}

func (c *captureSink) Name() string { return "capture" }

func (c *captureSink) Notify(_ context.Context, msg notifier.Message) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

// oversoldBounceBars declines, bounces, then keeps falling at a slowing pace
// on heavy final volume, which ends in a BUY against the trough at bar 39.
func oversoldBounceBars() []model.Bar {
	closes := make([]float64, 0, 70)
	p := 130.0
	for i := 0; i < 40; i++ {
		closes = append(closes, p)
		p -= 0.5
	}
	for i := 0; i < 5; i++ {
		p += 1.0
		closes = append(closes, p)
	}
	step := 1.0
	for i := 0; i < 25; i++ {
		p -= step
		step *= 0.9
		closes = append(closes, p)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Time: start.AddDate(0, 0, i), Open: c, High: c + 0.5, Low: c - 0.5, Close: c, Volume: 1000,
		}
	}
	bars[len(bars)-1].Volume = 3000
	return bars
}

func newTestScheduler(t *testing.T, fetcher collector.Fetcher, symbols ...string) (*Scheduler, *captureSink) {
	t.Helper()
	wl, err := watchlist.NewFileStore(filepath.Join(t.TempDir(), "watchlist.json"), symbols)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	sink := &captureSink{}
	col := collector.NewCollector(fetcher, "6mo", "1d", analysis.DefaultConfig(), nil)
	s := NewScheduler(context.Background(), col, wl, alertstate.NewMemoryStore(), notifier.NewDispatcher(nil, sink), recorder.NewNoopRecorder())
	return s, sink
}

func TestScanNow_AlertsOnceUntilKindChanges(t *testing.T) {
	fetcher := &collector.MockFetcher{
		Price: 100,
		Count: 60,
		Bars:  map[string][]model.Bar{"AAA": oversoldBounceBars()},
	}
	s, sink := newTestScheduler(t, fetcher, "AAA", "BBB")

	sum := s.ScanNow(context.Background())
	if sum.Symbols != 2 || sum.Failed != 0 || sum.Alerts != 1 {
		t.Fatalf("first scan = %+v, want 2 symbols, 0 failed, 1 alert", sum)
	}
	if len(sink.msgs) != 1 {
		t.Fatalf("delivered %d messages, want 1", len(sink.msgs))
	}
	if sink.msgs[0].Subject != "BUY Alert for AAA" {
		t.Errorf("subject = %q", sink.msgs[0].Subject)
	}
	if !strings.HasPrefix(sink.msgs[0].Body, "BUY Signal! Price: ") {
		t.Errorf("body = %q", sink.msgs[0].Body)
	}

	sum = s.ScanNow(context.Background())
	if sum.Alerts != 0 || len(sink.msgs) != 1 {
		t.Errorf("repeat scan re-alerted: %+v, %d messages", sum, len(sink.msgs))
	}

	// A HOLD in between re-arms the BUY alert.
	fetcher.Bars["AAA"] = oversoldBounceBars()[:45]
	s.ScanNow(context.Background())
	fetcher.Bars["AAA"] = oversoldBounceBars()
	if sum = s.ScanNow(context.Background()); sum.Alerts != 1 {
		t.Errorf("scan after HOLD = %+v, want 1 alert", sum)
	}
}

func TestScanNow_FailuresDoNotAbort(t *testing.T) {
	fetcher := &collector.MockFetcher{Err: errors.New("upstream down")}
	s, sink := newTestScheduler(t, fetcher, "AAA", "BBB")

	sum := s.ScanNow(context.Background())
	if sum.Symbols != 2 || sum.Failed != 2 {
		t.Errorf("summary = %+v, want both symbols failed", sum)
	}
	if fetcher.Calls != 2 {
		t.Errorf("fetch calls = %d, want 2", fetcher.Calls)
	}
	if len(sink.msgs) != 0 {
		t.Errorf("unexpected alerts: %v", sink.msgs)
	}
}

func TestRegisterAll_RejectsBadSpec(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{Price: 100, Count: 60}, "AAA")
	if err := s.RegisterAll("not a cron"); err == nil {
		t.Error("expected error for invalid cron spec")
	}
	if err := s.RegisterAll("*/30 * * * * *"); err != nil {
		t.Errorf("RegisterAll: %v", err)
	}
}

func TestHandleCommand(t *testing.T) {
	fetcher := &collector.MockFetcher{
		Price: 100,
		Count: 60,
		Bars:  map[string][]model.Bar{"AAA": oversoldBounceBars()},
	}
	s, sink := newTestScheduler(t, fetcher, "AAA")

	tests := []struct {
		command string
		want    string
	}{
		{"/watchlist", "• AAA"},
		{"/add msft", "added MSFT"},
		{"/add MSFT", "already on the watchlist"},
		{"/add", "Usage: /add SYMBOL"},
		{"/remove msft", "removed MSFT"},
		{"/remove MSFT", "not on the watchlist"},
		{"/analyze aaa", "BUY: RSI oversold + near support + MACD bullish + volume confirmation"},
		{"/test", "delivered to 1 of 1 channels"},
		{"hello", "Commands:"},
		{"", "Commands:"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			got := s.HandleCommand(tt.command)
			if !strings.Contains(got, tt.want) {
				t.Errorf("HandleCommand(%q) = %q, want it to contain %q", tt.command, got, tt.want)
			}
		})
	}
	if len(sink.msgs) != 1 || sink.msgs[0].Subject != "Test Alert" {
		t.Errorf("sink got %v, want only the test alert", sink.msgs)
	}
}

func TestHandleCommand_AnalyzeError(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{Err: errors.New("boom")}, "AAA")
	got := s.HandleCommand("/analyze AAA")
	if !strings.Contains(got, "boom") {
		t.Errorf("reply = %q, want fetch error", got)
	}
}

func TestScanNow_UndeliveredAlertsNotCounted(t *testing.T) {
	fetcher := &collector.MockFetcher{Bars: map[string][]model.Bar{"AAA": oversoldBounceBars()}}
	s, sink := newTestScheduler(t, fetcher, "AAA")
	sink.err = errors.New("channel down")

	sum := s.ScanNow(context.Background())
	if sum.Failed != 0 || sum.Alerts != 0 {
		t.Errorf("summary = %+v, want no failures and 0 alerts", sum)
	}
	if got := s.HandleCommand("/scan"); !strings.Contains(got, "0 alerts") {
		t.Errorf("/scan reply = %q", got)
	}
}
