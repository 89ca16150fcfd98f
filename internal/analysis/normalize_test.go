package analysis

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"SRSentinel/internal/model"
)

func labels(names ...string) []model.ColumnLabel {
	out := make([]model.ColumnLabel, len(names))
	for i, n := range names {
		out[i] = model.ColumnLabel{n}
	}
	return out
}

func TestNormalizeColumns(t *testing.T) {
	tests := []struct {
		name   string
		labels []model.ColumnLabel
		want   ColumnMapping
	}{
		{
			name:   "canonical",
			labels: labels("Open", "High", "Low", "Close", "Volume"),
			want:   ColumnMapping{0, 1, 2, 3, 4, -1},
		},
		{
			name:   "case-insensitive with timestamp",
			labels: labels("DATE", "close", "VOLUME", "open", "high", "low"),
			want:   ColumnMapping{3, 4, 5, 1, 2, 0},
		},
		{
			name: "multi-level labels",
			labels: []model.ColumnLabel{
				{"Price", "Open"}, {"Price", "High"}, {"Price", "Low"}, {"Price", "Close"}, {"Trade", "Volume"},
			},
			want: ColumnMapping{0, 1, 2, 3, 4, -1},
		},
		{
			name:   "first matching column wins",
			labels: labels("Open", "High", "Low", "Close", "Adj Close", "Volume"),
			want:   ColumnMapping{0, 1, 2, 3, 5, -1},
		},
		{
			name:   "substring match",
			labels: labels("open_price", "day_high", "day_low", "last_close", "total_volume"),
			want:   ColumnMapping{0, 1, 2, 3, 4, -1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeColumns(tt.labels)
			if err != nil {
				t.Fatalf("NormalizeColumns: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeColumns_MissingVolume(t *testing.T) {
	_, err := NormalizeColumns(labels("Open", "High", "Low", "Close"))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !reflect.DeepEqual(verr.Missing, []string{ColVolume}) {
		t.Errorf("Missing = %v, want [Volume]", verr.Missing)
	}
}

func TestFlattenLabel(t *testing.T) {
	if got := FlattenLabel(model.ColumnLabel{"Price", "", " Close "}); got != "Price_Close" {
		t.Errorf("FlattenLabel = %q", got)
	}
}

func day(d int) time.Time { return time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC) }

func TestNormalize_CoercesAndDropsRows(t *testing.T) {
	raw := &model.RawTable{
		Columns: labels("Open", "High", "Low", "Close", "Volume"),
		Index:   []any{day(1), day(2), day(3), day(4), day(5), day(6)},
		Rows: [][]any{
			{1.0, 2.0, 0.5, 1.5, 100.0},
			{"2", "3", "1", "2.5", "200"},
			{json.Number("3"), json.Number("4"), json.Number("2"), json.Number("3.5"), json.Number("300")},
			{nil, 4.0, 2.0, 3.0, 10.0},   // missing open
			{4.0, 5.0, 3.0, "n/a", 10.0}, // bad close
			{4.0, 5.0, 3.0, 4.5, -1.0},   // negative volume
		},
	}
	s, err := Normalize("TEST", raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.Symbol != "TEST" || s.Len() != 3 {
		t.Fatalf("got %d bars for %q, want 3", s.Len(), s.Symbol)
	}
	want := model.Bar{Time: day(2), Open: 2, High: 3, Low: 1, Close: 2.5, Volume: 200}
	if s.Bars[1] != want {
		t.Errorf("bar[1] = %+v, want %+v", s.Bars[1], want)
	}
	if s.Bars[2].Close != 3.5 {
		t.Errorf("json.Number close = %v", s.Bars[2].Close)
	}
}

func TestNormalize_SortsAndDeduplicates(t *testing.T) {
	raw := &model.RawTable{
		Columns: labels("Open", "High", "Low", "Close", "Volume"),
		Index:   []any{day(3), day(1), day(2), day(1)},
		Rows: [][]any{
			{3.0, 3.0, 3.0, 3.0, 3.0},
			{1.0, 1.0, 1.0, 1.0, 1.0},
			{2.0, 2.0, 2.0, 2.0, 2.0},
			{9.0, 9.0, 9.0, 9.0, 9.0},
		},
	}
	s, err := Normalize("TEST", raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	closes := s.Closes()
	if !reflect.DeepEqual(closes, []float64{9, 2, 3}) {
		t.Errorf("closes = %v, want [9 2 3] (last duplicate kept, ascending time)", closes)
	}
	for i := 1; i < s.Len(); i++ {
		if !s.Bars[i].Time.After(s.Bars[i-1].Time) {
			t.Fatalf("time axis not strictly increasing at %d", i)
		}
	}
}

func TestNormalize_TimestampSources(t *testing.T) {
	t.Run("timestamp column", func(t *testing.T) {
		raw := &model.RawTable{
			Columns: labels("Date", "Open", "High", "Low", "Close", "Volume"),
			Rows: [][]any{
				{"2024-02-02", 2.0, 2.0, 2.0, 2.0, 2.0},
				{"2024-02-01", 1.0, 1.0, 1.0, 1.0, 1.0},
				{"not a date", 5.0, 5.0, 5.0, 5.0, 5.0},
			},
		}
		s, err := Normalize("TEST", raw)
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		if s.Len() != 2 || !s.Bars[0].Time.Equal(day(1)) || s.Bars[1].Close != 2 {
			t.Errorf("bars = %+v", s.Bars)
		}
	})

	t.Run("row order", func(t *testing.T) {
		raw := &model.RawTable{
			Columns: labels("Open", "High", "Low", "Close", "Volume"),
			Rows: [][]any{
				{1.0, 1.0, 1.0, 1.0, 1.0},
				{2.0, 2.0, 2.0, 2.0, 2.0},
			},
		}
		s, err := Normalize("TEST", raw)
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		if s.Len() != 2 || !s.Bars[0].Time.Before(s.Bars[1].Time) {
			t.Errorf("bars = %+v", s.Bars)
		}
	})

	t.Run("unix seconds index", func(t *testing.T) {
		raw := &model.RawTable{
			Columns: labels("Open", "High", "Low", "Close", "Volume"),
			Index:   []any{int64(1706745600)},
			Rows:    [][]any{{1.0, 1.0, 1.0, 1.0, 1.0}},
		}
		s, err := Normalize("TEST", raw)
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		if !s.Bars[0].Time.Equal(day(1)) {
			t.Errorf("time = %v, want %v", s.Bars[0].Time, day(1))
		}
	})
}

func TestNormalize_Errors(t *testing.T) {
	ohlcv := labels("Open", "High", "Low", "Close", "Volume")
	tests := []struct {
		name      string
		raw       *model.RawTable
		wantEmpty bool
	}{
		{"nil table", nil, true},
		{"no rows", &model.RawTable{Columns: ohlcv}, true},
		{"no rows and no columns", &model.RawTable{}, true},
		{"missing volume", &model.RawTable{
			Columns: labels("Open", "High", "Low", "Close"),
			Rows:    [][]any{{1.0, 1.0, 1.0, 1.0}},
		}, false},
		{"nothing survives coercion", &model.RawTable{
			Columns: ohlcv,
			Rows:    [][]any{{"x", 1.0, 1.0, 1.0, 1.0}},
		}, false},
		{"index length mismatch", &model.RawTable{
			Columns: ohlcv,
			Index:   []any{day(1)},
			Rows:    [][]any{{1.0, 1.0, 1.0, 1.0, 1.0}, {1.0, 1.0, 1.0, 1.0, 1.0}},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize("TEST", tt.raw)
			var empty *EmptyInputError
			var invalid *ValidationError
			switch {
			case tt.wantEmpty && !errors.As(err, &empty):
				t.Errorf("expected EmptyInputError, got %v", err)
			case !tt.wantEmpty && !errors.As(err, &invalid):
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}
