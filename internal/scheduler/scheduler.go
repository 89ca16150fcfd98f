package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"SRSentinel/internal/alertstate"
	"SRSentinel/internal/collector"
	"SRSentinel/internal/notifier"
	"SRSentinel/internal/recorder"
	"SRSentinel/internal/watchlist"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs the periodic watch-list scan and answers chat commands.
type Scheduler struct {
	Cron       *cron.Cron
	Collector  *collector.Collector
	Watchlist  watchlist.Store
	Alerts     alertstate.Store
	Dispatcher *notifier.Dispatcher
	Recorder   recorder.Recorder
	Ctx        context.Context

	scanMu sync.Mutex
}

// ScanSummary reports the outcome of one pass over the watch list.
type ScanSummary struct {
	Symbols int
	Failed  int
	Alerts  int // accepted by at least one channel
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, wl watchlist.Store, alerts alertstate.Store, d *notifier.Dispatcher, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Collector:  col,
		Watchlist:  wl,
		Alerts:     alerts,
		Dispatcher: d,
		Recorder:   rec,
		Ctx:        ctx,
	}
}

// RegisterAll registers the watch-list scan.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, func() { s.ScanNow(s.Ctx) }); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// ScanNow analyzes every watched symbol in order and delivers new BUY/SELL
// alerts. A failing symbol is logged and skipped. Overlapping scans are
// skipped rather than queued.
func (s *Scheduler) ScanNow(ctx context.Context) ScanSummary {
	var sum ScanSummary
	if !s.scanMu.TryLock() {
		log.Warn().Msg("previous scan still running, skipping")
		return sum
	}
	defer s.scanMu.Unlock()

	symbols := s.Watchlist.List()
	log.Info().Int("symbols", len(symbols)).Msg("scanning watchlist")
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}
		sum.Symbols++
		n, err := s.scanSymbol(ctx, symbol)
		if err != nil {
			sum.Failed++
			log.Error().Err(err).Str("symbol", symbol).Msg("scan failed")
			continue
		}
		sum.Alerts += n
	}
	log.Info().Int("symbols", sum.Symbols).Int("failed", sum.Failed).Int("alerts", sum.Alerts).Msg("scan finished")
	return sum
}

func (s *Scheduler) scanSymbol(ctx context.Context, symbol string) (int, error) {
	res, err := s.Collector.Analyze(ctx, symbol)
	if err != nil {
		return 0, err
	}

	runID, err := s.Recorder.RecordRun(&recorder.RunSnapshot{
		Symbol:   symbol,
		Interval: s.Collector.Interval,
		Result:   res,
		RanAt:    time.Now(),
	})
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("record run")
	}

	prev, hasPrev, err := s.Alerts.Last(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("read last alert, treating as unseen")
		hasPrev = false
	}
	fresh, last, changed := alertstate.Fresh(prev, hasPrev, res.Signals)

	sent := 0
	for _, sig := range fresh {
		if !sig.Kind.Directional() {
			continue
		}
		delivered := s.Dispatcher.Dispatch(ctx, notifier.FormatSignalAlert(symbol, sig))
		if delivered > 0 {
			sent++
		}
		if err := s.Recorder.RecordAlert(&recorder.AlertEvent{
			RunID:     runID,
			Symbol:    symbol,
			Kind:      string(sig.Kind),
			Price:     sig.Price,
			Reason:    sig.Reason,
			Delivered: delivered,
			SentAt:    time.Now(),
		}); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("record alert")
		}
	}

	if changed {
		if err := s.Alerts.Remember(ctx, symbol, last); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("remember last alert")
		}
	}
	return sent, nil
}

// AnalyzeSymbol runs the analysis for one symbol and returns a text report.
// No alerts are sent.
func (s *Scheduler) AnalyzeSymbol(ctx context.Context, symbol string) (string, error) {
	res, err := s.Collector.Analyze(ctx, symbol)
	if err != nil {
		return "", err
	}
	return notifier.FormatAnalysisReport(symbol, res), nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	arg := ""
	if len(fields) > 1 {
		arg = watchlist.Normalize(fields[1])
	}

	switch strings.ToLower(fields[0]) {
	case "/watchlist", "/list":
		return notifier.FormatWatchlist(s.Watchlist.List())
	case "/add":
		if arg == "" {
			return "Usage: /add SYMBOL"
		}
		added, err := s.Watchlist.Add(arg)
		switch {
		case err != nil:
			return fmt.Sprintf("❌ could not add %s: %v", arg, err)
		case !added:
			return fmt.Sprintf("%s is already on the watchlist", arg)
		}
		return fmt.Sprintf("✅ added %s", arg)
	case "/remove":
		if arg == "" {
			return "Usage: /remove SYMBOL"
		}
		removed, err := s.Watchlist.Remove(arg)
		switch {
		case err != nil:
			return fmt.Sprintf("❌ could not remove %s: %v", arg, err)
		case !removed:
			return fmt.Sprintf("%s is not on the watchlist", arg)
		}
		return fmt.Sprintf("✅ removed %s", arg)
	case "/analyze":
		if arg == "" {
			return "Usage: /analyze SYMBOL"
		}
		report, err := s.AnalyzeSymbol(s.Ctx, arg)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return report
	case "/scan":
		sum := s.ScanNow(s.Ctx)
		return fmt.Sprintf("Scan complete: %d symbols, %d failed, %d alerts", sum.Symbols, sum.Failed, sum.Alerts)
	case "/test":
		n := s.Dispatcher.Dispatch(s.Ctx, notifier.Message{
			Subject: "Test Alert",
			Body:    "SRSentinel notifications are working.",
		})
		return fmt.Sprintf("Test alert delivered to %d of %d channels", n, s.Dispatcher.Len())
	default:
		return helpText
	}
}

const helpText = "Commands:\n" +
	"/watchlist - show watched symbols\n" +
	"/add SYMBOL - watch a symbol\n" +
	"/remove SYMBOL - stop watching a symbol\n" +
	"/analyze SYMBOL - levels, indicators and signals\n" +
	"/scan - scan the watchlist now\n" +
	"/test - send a test alert"
