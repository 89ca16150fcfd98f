package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SRSentinel/internal/alertstate"
	"SRSentinel/internal/collector"
	"SRSentinel/internal/config"
	"SRSentinel/internal/metrics"
	"SRSentinel/internal/notifier"
	"SRSentinel/internal/recorder"
	"SRSentinel/internal/scheduler"
	"SRSentinel/internal/watchlist"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Info().Msg("SRSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Addr); err != nil {
				log.Error().Err(err).Msg("metrics server")
			}
		}()
	}

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "rest":
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "csv":
		fetcher = collector.NewCSVFetcher(cfg.DataSource.CSVDir)
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source")

	col := collector.NewCollector(fetcher, cfg.DataSource.Period, cfg.DataSource.Interval, cfg.Analysis, m)

	// Init watchlist
	wl, err := watchlist.NewFileStore(cfg.Watchlist.File, cfg.Watchlist.Defaults)
	if err != nil {
		log.Fatal().Err(err).Msg("init watchlist")
	}

	// Init alert state
	var alerts alertstate.Store = alertstate.NewMemoryStore()
	if cfg.Alerts.RedisAddr != "" {
		rs, err := alertstate.NewRedisStore(alertstate.RedisConfig{
			Addr:     cfg.Alerts.RedisAddr,
			Password: cfg.Alerts.RedisPassword,
			DB:       cfg.Alerts.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("init redis alert store failed, using memory")
		} else {
			alerts = rs
			defer rs.Close()
		}
	}

	// Init notification channels
	dispatcher := notifier.NewDispatcher(m)
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.Enabled {
		tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err != nil {
			log.Fatal().Err(err).Msg("init telegram")
		}
		dispatcher.Add(tn)
	}
	if cfg.Email.Enabled {
		dispatcher.Add(notifier.NewMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort,
			cfg.Email.Username, cfg.Email.Password, cfg.Email.From, cfg.Email.To))
	}
	if dispatcher.Len() == 0 {
		log.Warn().Msg("no notification channel configured, alerts go to the log")
		dispatcher.Add(notifier.LogSink{})
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, wl, alerts, dispatcher, rec)
	if err := sched.RegisterAll(cfg.Schedule.ScanCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, scanning now")
		go sched.ScanNow(ctx)
	}

	log.Info().Str("scan_cron", cfg.Schedule.ScanCron).Msg("SRSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	log.Info().Msg("SRSentinel stopped")
}
