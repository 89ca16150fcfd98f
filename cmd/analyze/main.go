// Command analyze runs one support/resistance analysis and prints the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SRSentinel/internal/analysis"
	"SRSentinel/internal/collector"
	"SRSentinel/internal/notifier"
	"SRSentinel/internal/strategy"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	def := analysis.DefaultConfig()
	var (
		symbol   = flag.String("symbol", "RELIANCE.NS", "ticker symbol")
		csvPath  = flag.String("csv", "", "read bars from this CSV file instead of Yahoo")
		period   = flag.String("period", "6mo", "history period")
		interval = flag.String("interval", "1d", "bar interval")
		proxy    = flag.String("proxy", os.Getenv("HTTPS_PROXY"), "HTTP proxy URL")
		logLevel = flag.String("log-level", "info", "log level")
		cfg      = def
	)
	flag.IntVar(&cfg.Distance, "distance", def.Distance, "minimum bars between swing points")
	flag.Float64Var(&cfg.Tolerance, "tolerance", def.Tolerance, "relative price tolerance for level zones")
	flag.IntVar(&cfg.MinTouches, "min-touches", def.MinTouches, "touches needed to report a zone")
	flag.IntVar(&cfg.RSIPeriod, "rsi", def.RSIPeriod, "RSI period")
	flag.IntVar(&cfg.MACDFast, "macd-fast", def.MACDFast, "MACD fast span")
	flag.IntVar(&cfg.MACDSlow, "macd-slow", def.MACDSlow, "MACD slow span")
	flag.IntVar(&cfg.MACDSignal, "macd-signal", def.MACDSignal, "MACD signal span")
	flag.BoolVar(&cfg.UseVolumeFilter, "volume-filter", def.UseVolumeFilter, "require above-average volume")
	flag.Parse()

	setupLogging(*logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := run(ctx, *symbol, *csvPath, *period, *interval, *proxy, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("symbol", *symbol).Msg("analysis failed")
	}
	fmt.Print(notifier.FormatAnalysisReport(*symbol, res))
	if len(res.Levels) > strategy.RecentLevels {
		fmt.Printf("\nAll levels (%d):\n", len(res.Levels))
		for _, l := range res.Levels {
			fmt.Printf("  %-10s %.2f  %s\n", l.Kind, l.Price, l.Time.Format("2006-01-02 15:04"))
		}
	}
}

func run(ctx context.Context, symbol, csvPath, period, interval, proxy string, cfg analysis.Config) (*analysis.Result, error) {
	if csvPath == "" {
		col := collector.NewCollector(collector.NewYahooFetcher(proxy), period, interval, cfg, nil)
		return col.Analyze(ctx, symbol)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	raw, err := collector.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", csvPath, err)
	}
	return analysis.Run(symbol, raw, cfg)
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}
