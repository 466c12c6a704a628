// Package export serializes entity listings and report summaries to CSV.
//
// Column names and their order are a compatibility contract with saved
// spreadsheet/bookkeeping import mappings; they must not change between
// versions. No aggregation happens here, only serialization.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Row maps column name to rendered value. Columns absent from a row are
// emitted as empty strings.
type Row = map[string]string

// WriteCSV writes a UTF-8, comma-delimited table: one header row with the
// given columns in order, then one line per row with fields in the same
// order. Quoting follows RFC 4180 (encoding/csv): fields containing the
// delimiter, quotes, or line breaks are enclosed in double quotes with
// internal quotes doubled.
func WriteCSV(w io.Writer, columns []string, rows []Row) error {
	if len(columns) == 0 {
		return fmt.Errorf("csv export: no columns declared")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}

	record := make([]string, len(columns))
	for i, row := range rows {
		for j, col := range columns {
			record[j] = row[col]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	return nil
}
