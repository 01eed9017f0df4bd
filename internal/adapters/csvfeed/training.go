package csvfeed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TrainingRow is one labeled sample from a training CSV.
type TrainingRow struct {
	TempC    float64
	Humidity float64
	WindKmh  float64
	Risk     string // low / medium / high
}

// trainingAliases maps accepted training column names to canonical fields.
var trainingAliases = map[string]string{
	"temp":     "temp",
	"temp_c":   "temp",
	"hum":      "humidity",
	"humidity": "humidity",
	"wind":     "wind",
	"wind_kmh": "wind",
	"risk":     "risk",
	"risco":    "risk",
	"label":    "risk",
}

var trainingFields = []string{"temp", "humidity", "wind", "risk"}

func mapTrainingHeader(header []string) (columns, error) {
	cols := make(columns)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := trainingAliases[name]; ok {
			if _, dup := cols[canonical]; dup {
				return nil, fmt.Errorf("duplicate column %q", canonical)
			}
			cols[canonical] = i
		}
	}
	for _, f := range trainingFields {
		if _, ok := cols[f]; !ok {
			return nil, fmt.Errorf("missing required column %q", f)
		}
	}
	return cols, nil
}

func parseTrainingRow(cols columns, record []string) (TrainingRow, error) {
	get := func(field string) string {
		i, ok := cols[field]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
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
		return TrainingRow{}, err
	}
	hum, err := num("humidity")
	if err != nil {
		return TrainingRow{}, err
	}
	wind, err := num("wind")
	if err != nil {
		return TrainingRow{}, err
	}

	label := strings.ToLower(get("risk"))
	switch label {
	case "low", "medium", "high":
	default:
		return TrainingRow{}, fmt.Errorf("unknown risk label %q", get("risk"))
	}

	return TrainingRow{TempC: temp, Humidity: hum, WindKmh: wind, Risk: label}, nil
}

// ParseTraining reads a labeled training CSV. Malformed rows are collected
// as RowErrors; only a broken header or unreadable stream is a hard error.
func ParseTraining(r io.Reader) ([]TrainingRow, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapTrainingHeader(header)
	if err != nil {
		return nil, nil, fmt.Errorf("header: %w", err)
	}

	var rows []TrainingRow
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
		row, err := parseTrainingRow(cols, record)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		rows = append(rows, row)
	}

	return rows, rowErrs, nil
}
