// Package loader reads the monthly temperature table from CSV.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/types"
)

const (
	ColumnYear        = "year"
	ColumnMonth       = "month"
	ColumnTemperature = "monthly_temperature_C"
)

// ErrMissingColumn is wrapped when the header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// ParseError reports a cell that could not be converted.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: column %s: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadFile reads the CSV at path.
func LoadFile(path string) (types.MonthlyTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	table, err := LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return table, nil
}

// LoadReader reads a header row followed by one row per observed month.
// Column order is free and unknown columns are ignored.
func LoadReader(r io.Reader) (types.MonthlyTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s (empty input)", ErrMissingColumn, ColumnYear)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var table types.MonthlyTable
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if isBlank(record) {
			continue
		}

		rec, err := parseRecord(record, idx, line)
		if err != nil {
			return nil, err
		}
		table = append(table, rec)
	}
	return table, nil
}

type columns struct {
	year, month, temp int
}

func columnIndex(header []string) (columns, error) {
	idx := columns{year: -1, month: -1, temp: -1}
	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(h, "\"\ufeff"))
		switch h {
		case ColumnYear:
			idx.year = i
		case ColumnMonth:
			idx.month = i
		case ColumnTemperature:
			idx.temp = i
		}
	}
	switch {
	case idx.year < 0:
		return idx, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnYear)
	case idx.month < 0:
		return idx, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnMonth)
	case idx.temp < 0:
		return idx, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnTemperature)
	}
	return idx, nil
}

func parseRecord(record []string, idx columns, line int) (types.MonthlyRecord, error) {
	year, err := parseInt(field(record, idx.year))
	if err != nil {
		return types.MonthlyRecord{}, &ParseError{Line: line, Column: ColumnYear, Value: field(record, idx.year), Err: err}
	}
	month, err := parseInt(field(record, idx.month))
	if err != nil {
		return types.MonthlyRecord{}, &ParseError{Line: line, Column: ColumnMonth, Value: field(record, idx.month), Err: err}
	}
	temp, err := strconv.ParseFloat(field(record, idx.temp), 64)
	if err != nil {
		return types.MonthlyRecord{}, &ParseError{Line: line, Column: ColumnTemperature, Value: field(record, idx.temp), Err: err}
	}
	return types.MonthlyRecord{Year: year, Month: month, TemperatureC: temp}, nil
}

// parseInt accepts "1940" as well as "1940.0", which spreadsheet exports produce.
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer")
	}
	return int(f), nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
