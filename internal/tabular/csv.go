package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadCSV parses CSV content where the first record is the header.
// Short records are padded; the reader is lenient about field counts
// because source files are hand-edited spreadsheet exports.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("read csv record: %w", err)
		}
		rows = append(rows, NewRow(columns, record))
	}
	return rows, nil
}
