package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRun(ResultOK, time.Millisecond)
	m.ObserveFetch(time.Millisecond)
	m.CountSignal("BUY")
	m.CountAlert("telegram", nil)
}

func TestCounters(t *testing.T) {
	m := NewMetrics()
	m.ObserveRun(ResultOK, time.Millisecond)
	m.ObserveRun(ResultInvalid, 0)
	m.CountSignal("HOLD")
	m.CountSignal("HOLD")
	m.CountAlert("email", errors.New("smtp down"))
	m.CountAlert("telegram", nil)

	if got := testutil.ToFloat64(m.AnalysisRuns.WithLabelValues(ResultOK)); got != 1 {
		t.Errorf("ok runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Signals.WithLabelValues("HOLD")); got != 2 {
		t.Errorf("HOLD signals = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.AlertFailures.WithLabelValues("email")); got != 1 {
		t.Errorf("email failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AlertsSent.WithLabelValues("telegram")); got != 1 {
		t.Errorf("telegram sent = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()
	m.CountSignal("BUY")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `srsentinel_signals_total{kind="BUY"} 1`) {
		t.Errorf("metrics output missing BUY counter:\n%s", rec.Body.String())
	}
}
