// Package ingest loads record batches and reconciliation rule files for
// the CLI. Batches arrive as CSV exports from the source systems; rules
// arrive as a YAML document mapping fields to canonicalizers, weights,
// and thresholds.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/cosmo-lgtm/ops-command-center/pkg/errors"
	"github.com/cosmo-lgtm/ops-command-center/pkg/record"
)

// LoadCSV reads a CSV export into records. The first row is the header;
// keyColumn names the column holding the source key. Every column,
// including the key, is carried as a field so it can participate in
// scoring.
func LoadCSV(path, keyColumn string) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	recs, err := ReadCSV(f, keyColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// ReadCSV parses CSV content into records.
func ReadCSV(r io.Reader, keyColumn string) ([]record.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	keyIdx := -1
	for i, col := range header {
		if col == keyColumn {
			keyIdx = i
			break
		}
	}
	if keyIdx < 0 {
		return nil, errors.NewConfigError("ingest",
			fmt.Sprintf("key column %q not found in header %v", keyColumn, header), nil)
	}

	var recs []record.Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		fields := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(row) {
				fields[col] = row[i]
			}
		}

		var key string
		if keyIdx < len(row) {
			key = row[keyIdx]
		}
		recs = append(recs, record.Record{Key: key, Fields: fields})
	}
	return recs, nil
}
