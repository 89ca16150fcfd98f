package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"SRSentinel/internal/model"
)

// Canonical column names.
const (
	ColOpen   = "Open"
	ColHigh   = "High"
	ColLow    = "Low"
	ColClose  = "Close"
	ColVolume = "Volume"
)

// canonicalColumns is matched in order against each lower-cased label; the
// first substring hit names the column.
var canonicalColumns = []struct {
	needle string
	name   string
}{
	{"open", ColOpen},
	{"high", ColHigh},
	{"low", ColLow},
	{"close", ColClose},
	{"volume", ColVolume},
}

var timestampColumns = map[string]bool{
	"date":      true,
	"datetime":  true,
	"time":      true,
	"timestamp": true,
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
}

// ColumnMapping gives the position of each canonical column in a RawTable.
// Timestamp is -1 when the table has no timestamp column.
type ColumnMapping struct {
	Open      int
	High      int
	Low       int
	Close     int
	Volume    int
	Timestamp int
}

// FlattenLabel joins the non-empty levels of a column label with "_".
func FlattenLabel(label model.ColumnLabel) string {
	parts := make([]string, 0, len(label))
	for _, p := range label {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "_")
}

// NormalizeColumns maps raw column labels onto the canonical OHLCV names.
// When several columns map to one name the first one is used.
func NormalizeColumns(labels []model.ColumnLabel) (ColumnMapping, error) {
	found := map[string]int{}
	timestamp := -1
	for i, label := range labels {
		flat := strings.ToLower(FlattenLabel(label))
		if timestampColumns[flat] {
			if timestamp < 0 {
				timestamp = i
			}
			continue
		}
		for _, c := range canonicalColumns {
			if strings.Contains(flat, c.needle) {
				if _, ok := found[c.name]; !ok {
					found[c.name] = i
				}
				break
			}
		}
	}

	var missing []string
	for _, c := range canonicalColumns {
		if _, ok := found[c.name]; !ok {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return ColumnMapping{}, &ValidationError{Missing: missing}
	}
	return ColumnMapping{
		Open:      found[ColOpen],
		High:      found[ColHigh],
		Low:       found[ColLow],
		Close:     found[ColClose],
		Volume:    found[ColVolume],
		Timestamp: timestamp,
	}, nil
}

// Normalize converts a raw table into a Series: numeric coercion, dropping of
// unusable rows, and a strictly increasing time axis. Timestamps come from the
// table index, else from a timestamp column, else from row order.
func Normalize(symbol string, raw *model.RawTable) (*model.Series, error) {
	if raw.Len() == 0 {
		return nil, &EmptyInputError{Symbol: symbol}
	}
	cols, err := NormalizeColumns(raw.Columns)
	if err != nil {
		return nil, err
	}
	if raw.Index != nil && len(raw.Index) != len(raw.Rows) {
		return nil, &ValidationError{Reason: fmt.Sprintf("index has %d labels for %d rows", len(raw.Index), len(raw.Rows))}
	}

	bars := make([]model.Bar, 0, len(raw.Rows))
	for i, row := range raw.Rows {
		bar, ok := coerceRow(row, cols)
		if !ok {
			continue
		}
		switch {
		case raw.Index != nil:
			bar.Time, ok = parseTime(raw.Index[i])
		case cols.Timestamp >= 0:
			bar.Time, ok = parseTime(cell(row, cols.Timestamp))
		default:
			bar.Time = time.Unix(0, int64(i)).UTC()
		}
		if !ok {
			continue
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, &ValidationError{Reason: "no data"}
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	unique := bars[:1]
	for _, b := range bars[1:] {
		if b.Time.Equal(unique[len(unique)-1].Time) {
			unique[len(unique)-1] = b
			continue
		}
		unique = append(unique, b)
	}

	return &model.Series{Symbol: symbol, Bars: unique}, nil
}

func coerceRow(row []any, cols ColumnMapping) (model.Bar, bool) {
	var bar model.Bar
	fields := []struct {
		idx int
		dst *float64
	}{
		{cols.Open, &bar.Open},
		{cols.High, &bar.High},
		{cols.Low, &bar.Low},
		{cols.Close, &bar.Close},
		{cols.Volume, &bar.Volume},
	}
	for _, f := range fields {
		v, ok := toFloat(cell(row, f.idx))
		if !ok {
			return model.Bar{}, false
		}
		*f.dst = v
	}
	if bar.Volume < 0 {
		return model.Bar{}, false
	}
	return bar, true
}

func cell(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseTime accepts time.Time, unix seconds, or a date string.
func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case int64:
		return time.Unix(t, 0).UTC(), true
	case int:
		return time.Unix(int64(t), 0).UTC(), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return time.Time{}, false
		}
		return time.Unix(int64(t), 0).UTC(), true
	case json.Number:
		if secs, err := t.Int64(); err == nil {
			return time.Unix(secs, 0).UTC(), true
		}
		return time.Time{}, false
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC(), true
		}
	}
	return time.Time{}, false
}
