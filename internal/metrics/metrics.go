// Package metrics exposes Prometheus instrumentation for analysis runs and
// alert delivery.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Run results.
const (
	ResultOK         = "ok"
	ResultEmpty      = "empty"
	ResultInvalid    = "invalid"
	ResultFetchError = "fetch_error"
	ResultError      = "error"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	AnalysisRuns     *prometheus.CounterVec // labels: result
	Signals          *prometheus.CounterVec // labels: kind
	AlertsSent       *prometheus.CounterVec // labels: channel
	AlertFailures    *prometheus.CounterVec // labels: channel
	AnalysisDuration prometheus.Histogram
	FetchDuration    prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		AnalysisRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "srsentinel_analysis_runs_total",
			Help: "Analysis runs by result",
		}, []string{"result"}),
		Signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "srsentinel_signals_total",
			Help: "Signals produced by kind",
		}, []string{"kind"}),
		AlertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "srsentinel_alerts_sent_total",
			Help: "Alerts delivered by channel",
		}, []string{"channel"}),
		AlertFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "srsentinel_alert_failures_total",
			Help: "Alert deliveries that failed, by channel",
		}, []string{"channel"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "srsentinel_analysis_duration_seconds",
			Help:    "Time spent in one analysis run, excluding the fetch",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "srsentinel_fetch_duration_seconds",
			Help:    "Time spent fetching OHLCV data",
			Buckets: prometheus.DefBuckets,
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.AnalysisRuns, m.Signals, m.AlertsSent, m.AlertFailures,
		m.AnalysisDuration, m.FetchDuration,
	)
	return m
}

// ObserveRun counts one run with its result and duration.
func (m *Metrics) ObserveRun(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.AnalysisRuns.WithLabelValues(result).Inc()
	if result == ResultOK {
		m.AnalysisDuration.Observe(d.Seconds())
	}
}

// ObserveFetch records the duration of one data fetch.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// CountSignal counts one produced signal.
func (m *Metrics) CountSignal(kind string) {
	if m == nil {
		return
	}
	m.Signals.WithLabelValues(kind).Inc()
}

// CountAlert counts one delivery attempt on channel.
func (m *Metrics) CountAlert(channel string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.AlertFailures.WithLabelValues(channel).Inc()
		return
	}
	m.AlertsSent.WithLabelValues(channel).Inc()
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
