package core

// decode.go turns a headerless CSV payload into positional rows.
//
// Column order is fixed by the table definition. Structural problems in a
// single record are reported per row so one bad line never sinks the file;
// only I/O failures, an empty payload or a payload with no parseable record
// at all abort decoding.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DecodedRow is one CSV record padded to the schema width.
type DecodedRow struct {
	Line  int
	Cells []string
}

// DecodeResult holds every record of the payload in file order.
type DecodeResult struct {
	Rows   []DecodedRow
	Errors []RowError
}

// Total returns the number of records seen, decodable or not.
func (d *DecodeResult) Total() int {
	return len(d.Rows) + len(d.Errors)
}

// Decode reads all records from r. The reader must already be normalised
// (see WrapForStreaming).
func Decode(r io.Reader, width int) (*DecodeResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	result := &DecodeResult{}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Errors = append(result.Errors,
					newRowError(parseErr.StartLine, "", "malformed record: "+parseErr.Err.Error()))
				continue
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}

		if isEmptyRow(record) {
			continue
		}

		line, _ := cr.FieldPos(0)
		cells, err := fitWidth(record, width)
		if err != nil {
			result.Errors = append(result.Errors,
				newRowError(line, strings.TrimSpace(record[0]), err.Error()))
			continue
		}

		result.Rows = append(result.Rows, DecodedRow{Line: line, Cells: cells})
	}

	if len(result.Rows) == 0 {
		if len(result.Errors) == 0 {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("%w: no record could be parsed (first error: %s)",
			ErrInvalidCSV, result.Errors[0].Reason)
	}

	return result, nil
}

// fitWidth pads short records with empty cells. Records that are too long
// are rejected unless the surplus cells are all empty, as produced by
// trailing delimiters.
func fitWidth(record []string, width int) ([]string, error) {
	switch {
	case len(record) == width:
		return record, nil
	case len(record) < width:
		cells := make([]string, width)
		copy(cells, record)
		return cells, nil
	}

	if !isEmptyRow(record[width:]) {
		return nil, fmt.Errorf("expected %d columns, got %d", width, len(record))
	}
	return record[:width], nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
