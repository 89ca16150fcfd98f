package analysis

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"SRSentinel/internal/model"
)

// reversalCloses declines for 40 bars, bounces for 5, then keeps falling at a
// slowing pace. The trough at bar 39 becomes support at 110.
func reversalCloses() []float64 {
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
	return closes
}

func tableFromCloses(closes []float64, lastVolume float64) *model.RawTable {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	raw := &model.RawTable{Columns: labels("Open", "High", "Low", "Close", "Volume")}
	for i, c := range closes {
		vol := 1000.0
		if i == len(closes)-1 {
			vol = lastVolume
		}
		raw.Index = append(raw.Index, start.AddDate(0, 0, i))
		raw.Rows = append(raw.Rows, []any{c, c + 0.5, c - 0.5, c, vol})
	}
	return raw
}

func TestRun_BuyAtSupport(t *testing.T) {
	res, err := Run("TEST", tableFromCloses(reversalCloses(), 3000), DefaultConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Levels) != 2 {
		t.Fatalf("levels = %+v, want one support and one resistance", res.Levels)
	}
	if res.Levels[0].Kind != model.Support || res.Levels[0].Price != 110 {
		t.Errorf("first level = %+v, want support at 110", res.Levels[0])
	}
	if res.Levels[1].Kind != model.Resistance || res.Levels[1].Price != 115.5 {
		t.Errorf("second level = %+v, want resistance at 115.5", res.Levels[1])
	}

	if len(res.Signals) != 1 {
		t.Fatalf("signals = %+v, want exactly one", res.Signals)
	}
	sig := res.Signals[0]
	if sig.Kind != model.SignalBuy {
		t.Fatalf("signal = %s, want BUY", sig.Kind)
	}
	if !strings.Contains(sig.Reason, "oversold") || !strings.Contains(sig.Reason, "support") {
		t.Errorf("reason = %q", sig.Reason)
	}
	if sig.RSI >= 30 || sig.MACD <= sig.MACDSignal {
		t.Errorf("indicators rsi=%v macd=%v signal=%v", sig.RSI, sig.MACD, sig.MACDSignal)
	}

	bar, rsi, macd, signal := res.Latest()
	if bar.Close != sig.Price || rsi != sig.RSI || macd != sig.MACD || signal != sig.MACDSignal {
		t.Errorf("Latest() disagrees with the signal snapshot")
	}
}

func TestRun_SellAtResistance(t *testing.T) {
	closes := reversalCloses()
	for i, c := range closes {
		closes[i] = 240 - c
	}
	res, err := Run("TEST", tableFromCloses(closes, 3000), DefaultConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Signals) != 1 || res.Signals[0].Kind != model.SignalSell {
		t.Fatalf("signals = %+v, want one SELL", res.Signals)
	}
	if !strings.Contains(res.Signals[0].Reason, "overbought") {
		t.Errorf("reason = %q", res.Signals[0].Reason)
	}
}

func TestRun_VolumeFilter(t *testing.T) {
	raw := tableFromCloses(reversalCloses(), 1000)

	res, err := Run("TEST", raw, DefaultConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Signals) != 1 || res.Signals[0].Kind != model.SignalHold {
		t.Errorf("average volume with filter: got %+v, want HOLD", res.Signals)
	}

	cfg := DefaultConfig()
	cfg.UseVolumeFilter = false
	res, err = Run("TEST", raw, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Signals) != 1 || res.Signals[0].Kind != model.SignalBuy {
		t.Errorf("filter off: got %+v, want BUY", res.Signals)
	}
}

func TestRun_FlatSeriesHolds(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	res, err := Run("FLAT", tableFromCloses(closes, 1000), DefaultConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Levels) != 0 {
		t.Errorf("flat series produced levels: %+v", res.Levels)
	}
	if len(res.Signals) != 1 || res.Signals[0].Kind != model.SignalHold || res.Signals[0].Reason != "no strong signal" {
		t.Errorf("signals = %+v, want single HOLD", res.Signals)
	}
}

func TestRun_IndicatorColumnsAligned(t *testing.T) {
	res, err := Run("TEST", tableFromCloses(reversalCloses(), 3000), DefaultConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	n := res.Series.Len()
	ind := res.Series.Indicators
	if len(ind.RSI) != n || len(ind.MACD) != n || len(ind.MACDSignal) != n {
		t.Fatalf("indicator lengths %d/%d/%d, want %d", len(ind.RSI), len(ind.MACD), len(ind.MACDSignal), n)
	}
	if !math.IsNaN(ind.RSI[0]) {
		t.Errorf("rsi[0] = %v, want NaN", ind.RSI[0])
	}
	for i := 1; i < n; i++ {
		if ind.RSI[i] < 0 || ind.RSI[i] > 100 {
			t.Fatalf("rsi[%d] = %v out of range", i, ind.RSI[i])
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	raw := tableFromCloses(reversalCloses(), 3000)
	first, err := Run("TEST", raw, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	second, err := Run("TEST", raw, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Levels, second.Levels) || !reflect.DeepEqual(first.Signals, second.Signals) {
		t.Error("repeated runs over the same input differ")
	}
}

func TestRun_Errors(t *testing.T) {
	_, err := Run("NONE", &model.RawTable{}, DefaultConfig())
	var empty *EmptyInputError
	if !errors.As(err, &empty) || empty.Symbol != "NONE" {
		t.Errorf("expected EmptyInputError for NONE, got %v", err)
	}

	noVolume := &model.RawTable{
		Columns: labels("Open", "High", "Low", "Close"),
		Rows:    [][]any{{1.0, 1.0, 1.0, 1.0}},
	}
	_, err = Run("TEST", noVolume, DefaultConfig())
	var invalid *ValidationError
	if !errors.As(err, &invalid) || !strings.Contains(err.Error(), "Volume") {
		t.Errorf("expected ValidationError naming Volume, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.Distance = 0
	if _, err := Run("TEST", tableFromCloses(reversalCloses(), 1000), cfg); err == nil {
		t.Error("expected config error for distance 0")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig invalid: %v", err)
	}
	bad := DefaultConfig()
	bad.Tolerance = 1.5
	if err := bad.Validate(); err == nil {
		t.Error("expected tolerance error")
	}
}
