package audit

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter writes timeline rows as CSV.
type CSVExporter struct{}

func (CSVExporter) WriteCSV(rows []TimelineRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"time", "actor", "action", "description", "status", "ip_address", "user_agent"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.At.Format("2006-01-02 15:04:05"),
			row.Actor,
			row.Action,
			row.Description,
			row.Status,
			row.IPAddress,
			row.UserAgent,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
