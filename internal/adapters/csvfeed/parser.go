// Package csvfeed provides defensive parsing and tailing of sensor reading
// CSV files.
//
// Field stations export CSVs with inconsistent headers and the occasional
// mangled row. The parser maps headers by name (with aliases), collects
// per-row errors instead of aborting the file, and never crashes on
// unexpected input. A polling tailer delivers rows appended to a live feed
// file as readings.
package csvfeed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tomas/vigia/internal/domain/risk"
)

// RowError records one rejected CSV row.
type RowError struct {
	Line int // 1-based line number within the file
	Err  error
}

// headerAliases maps accepted column names to canonical fields.
var headerAliases = map[string]string{
	"timestamp":  "timestamp",
	"time":       "timestamp",
	"zone":       "zone",
	"zona":       "zone",
	"temp":       "temp",
	"temp_c":     "temp",
	"hum":        "humidity",
	"humidity":   "humidity",
	"wind":       "wind",
	"wind_kmh":   "wind",
	"event":      "event",
	"event_type": "event",
	"note":       "note",
	"notes":      "note",
}

// timeFormats tried in order when parsing timestamps.
var timeFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// columns maps canonical field names to their CSV column index.
type columns map[string]int

// requiredFields must be present in the header for a file to parse at all.
var requiredFields = []string{"timestamp", "zone", "temp", "humidity", "wind"}

// mapHeader resolves a header row into canonical column positions.
func mapHeader(header []string) (columns, error) {
	cols := make(columns)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := headerAliases[name]; ok {
			if _, dup := cols[canonical]; dup {
				return nil, fmt.Errorf("duplicate column %q", canonical)
			}
			cols[canonical] = i
		}
	}
	for _, f := range requiredFields {
		if _, ok := cols[f]; !ok {
			return nil, fmt.Errorf("missing required column %q", f)
		}
	}
	return cols, nil
}

// parseTimestamp tries the accepted formats in order.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, f := range timeFormats {
		if ts, err := time.Parse(f, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// parseRow converts one CSV record into a reading.
func parseRow(cols columns, record []string) (risk.Reading, error) {
	get := func(field string) string {
		i, ok := cols[field]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	ts, err := parseTimestamp(get("timestamp"))
	if err != nil {
		return risk.Reading{}, err
	}

	zone := get("zone")
	if zone == "" {
		return risk.Reading{}, fmt.Errorf("empty zone")
	}

	num := func(field string) (float64, error) {
		v, err := strconv.ParseFloat(get(field), 64)
		if err != nil {
			return 0, fmt.Errorf("bad %s value %q", field, get(field))
		}
		return v, nil
	}

	temp, err := num("temp")
	if err != nil {
		return risk.Reading{}, err
	}
	hum, err := num("humidity")
	if err != nil {
		return risk.Reading{}, err
	}
	wind, err := num("wind")
	if err != nil {
		return risk.Reading{}, err
	}

	return risk.Reading{
		Timestamp: ts,
		Zone:      zone,
		TempC:     temp,
		Humidity:  hum,
		WindKmh:   wind,
		Event:     get("event"),
		Note:      get("note"),
	}, nil
}

// Parse reads an entire CSV stream. Malformed rows are collected as
// RowErrors; only a broken header or unreadable stream is a hard error.
func Parse(r io.Reader) ([]risk.Reading, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows, parseRow bounds-checks

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapHeader(header)
	if err != nil {
		return nil, nil, fmt.Errorf("header: %w", err)
	}

	var readings []risk.Reading
	var rowErrs []RowError
	line := 1

	for {
		record, err := cr.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		reading, err := parseRow(cols, record)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		readings = append(readings, reading)
	}

	return readings, rowErrs, nil
}
