package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"SRSentinel/internal/model"
)

// CSVFetcher reads OHLCV data from CSV files with a single header row. A
// symbol ending in ".csv" is read as a path; any other symbol is looked up as
// {Dir}/{symbol}.csv. Period and interval are ignored.
type CSVFetcher struct {
	Dir string
}

// NewCSVFetcher creates a fetcher rooted at dir.
func NewCSVFetcher(dir string) *CSVFetcher { return &CSVFetcher{Dir: dir} }

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchBars(_ context.Context, symbol, _, _ string) (*model.RawTable, error) {
	path := symbol
	if !strings.HasSuffix(strings.ToLower(symbol), ".csv") {
		path = filepath.Join(f.Dir, symbol+".csv")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV parses CSV text into a RawTable; cells stay strings.
func ReadCSV(r io.Reader) (*model.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &model.RawTable{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	table := &model.RawTable{Columns: make([]model.ColumnLabel, len(header))}
	for i, h := range header {
		table.Columns[i] = model.ColumnLabel{strings.TrimPrefix(h, "\ufeff")}
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		row := make([]any, len(record))
		for i, v := range record {
			row[i] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
