package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
)

// Dataset is a table keyed by header name. Caption is an optional line shown
// under the title in document formats.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
	Caption string
}

// validate rejects an empty header list and cells for columns not in Headers.
func (d Dataset) validate() error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("dataset requires at least one header")
	}
	known := make(map[string]struct{}, len(d.Headers))
	for _, h := range d.Headers {
		known[h] = struct{}{}
	}
	for i, row := range d.Rows {
		var unknown []string
		for key := range row {
			if _, ok := known[key]; !ok {
				unknown = append(unknown, key)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return fmt.Errorf("row %d has unknown columns %v", i, unknown)
		}
	}
	return nil
}

// CSVExporter writes a Dataset as RFC 4180 CSV with a header record.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV bytes. Missing cells are written empty.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(data.Headers))
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
