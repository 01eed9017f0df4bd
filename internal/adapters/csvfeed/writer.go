package csvfeed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tomas/vigia/internal/domain/risk"
)

// writeHeader is the column order emitted by WriteReadings. It uses the
// canonical names, so Parse reads the output back without aliases.
var writeHeader = []string{"timestamp", "zone", "temp", "humidity", "wind", "event", "note"}

// WriteReadings writes readings as CSV in the feed format. Timestamps are
// written as "2006-01-02 15:04:05".
func WriteReadings(w io.Writer, readings []risk.Reading) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(writeHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range readings {
		record := []string{
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Zone,
			strconv.FormatFloat(r.TempC, 'f', 1, 64),
			strconv.FormatFloat(r.Humidity, 'f', 1, 64),
			strconv.FormatFloat(r.WindKmh, 'f', 1, 64),
			r.Event,
			r.Note,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
