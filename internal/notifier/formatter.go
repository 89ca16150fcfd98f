package notifier

import (
	"fmt"
	"math"
	"strings"

	"SRSentinel/internal/analysis"
	"SRSentinel/internal/levels"
	"SRSentinel/internal/model"
)

// FormatSignalAlert formats one signal as an alert message.
func FormatSignalAlert(symbol string, sig model.Signal) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Signal! Price: %.2f\n", sig.Kind, sig.Price)
	fmt.Fprintf(&b, "Reason: %s\n", sig.Reason)
	fmt.Fprintf(&b, "RSI: %s | MACD: %s / %s\n", num(sig.RSI, 1), num(sig.MACD, 4), num(sig.MACDSignal, 4))
	if sig.Volume > 0 {
		fmt.Fprintf(&b, "Volume: %.0f (20-bar avg %s)\n", sig.Volume, num(sig.AvgVolume, 0))
	}
	if sig.Level != nil {
		fmt.Fprintf(&b, "Level: %s %.2f (%s)\n", sig.Level.Kind, sig.Level.Price, sig.Level.Time.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "Bar: %s", sig.Time.Format("2006-01-02 15:04"))

	return Message{
		Subject: fmt.Sprintf("%s Alert for %s", sig.Kind, symbol),
		Body:    b.String(),
	}
}

// FormatAnalysisReport summarizes an analysis result for chat replies.
func FormatAnalysisReport(symbol string, res *analysis.Result) string {
	var b strings.Builder
	bar, rsi, macd, signal := res.Latest()

	fmt.Fprintf(&b, "📊 %s | %s\n\n", symbol, bar.Time.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Close: %.2f | Volume: %.0f\n", bar.Close, bar.Volume)
	fmt.Fprintf(&b, "RSI: %s | MACD: %s | Signal: %s\n\n", num(rsi, 1), num(macd, 4), num(signal, 4))

	recent := levels.Recent(res.Levels, 5)
	fmt.Fprintf(&b, "Recent levels (%d of %d):\n", len(recent), len(res.Levels))
	for _, l := range recent {
		fmt.Fprintf(&b, "  %-10s %.2f  %s\n", l.Kind, l.Price, l.Time.Format("2006-01-02"))
	}
	if len(res.Zones) > 0 {
		b.WriteString("Zones:\n")
		for _, z := range res.Zones {
			fmt.Fprintf(&b, "  %-10s %.2f  x%d\n", z.Kind, z.Price, z.Touches)
		}
	}

	b.WriteString("\nSignals:\n")
	for _, s := range res.Signals {
		fmt.Fprintf(&b, "  %s: %s\n", s.Kind, s.Reason)
	}
	return b.String()
}

// FormatWatchlist lists the watched symbols.
func FormatWatchlist(symbols []string) string {
	if len(symbols) == 0 {
		return "Watchlist is empty"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "👀 Watchlist (%d)\n", len(symbols))
	for _, s := range symbols {
		fmt.Fprintf(&b, "• %s\n", s)
	}
	return b.String()
}

func num(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", prec, v)
}
