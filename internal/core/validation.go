package core

// validation.go applies per-entity rules to decoded rows.
//
// Table definitions convert cells with their BuildRecord function. The field
// helpers below read FieldSpec.Required, so an entity states which columns are
// mandatory in its field list only. Rows that fail are kept with their reason
// and never abort the upload.

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/hireload/internal/config"
	"github.com/jackc/pgx/v5/pgtype"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field/column name
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationReport partitions decoded rows into valid records and invalid rows.
type ValidationReport struct {
	Valid   []Record
	Invalid []RowError
	Nulls   NullStats
}

// ValidateRows runs def.BuildRecord over every row in order.
func ValidateRows(def TableDefinition, rows []DecodedRow, opts ValidateOptions) *ValidationReport {
	report := &ValidationReport{
		Valid: make([]Record, 0, len(rows)),
	}

	for _, row := range rows {
		rec, err := def.BuildRecord(row.Cells, opts)
		if err != nil {
			report.Invalid = append(report.Invalid,
				newRowError(row.Line, strings.TrimSpace(row.Cells[0]), err.Error()))
			continue
		}
		rec.Line = row.Line
		report.Valid = append(report.Valid, rec)

		if def.TrackNulls {
			countNulls(&report.Nulls, rec)
		}
	}

	return report
}

func countNulls(stats *NullStats, rec Record) {
	if !rec.Name.Valid {
		stats.Names++
	}
	if !rec.HiredAt.Valid {
		stats.Datetimes++
	}
	if !rec.DepartmentID.Valid {
		stats.Departments++
	}
	if !rec.JobID.Valid {
		stats.Jobs++
	}
}

// IDField parses an id column. A null cell is an error when spec.Required is
// set and yields 0 otherwise.
func IDField(spec FieldSpec, cell string) (int64, error) {
	if IsNull(cell) {
		if spec.Required {
			return 0, errRequired(spec)
		}
		return 0, nil
	}
	id, err := ParseID(cell)
	if err != nil {
		return 0, ValidationError{Field: spec.Name, Message: err.Error()}
	}
	return id, nil
}

// TextField returns the trimmed cell. Null or blank values fail only when
// spec.Required is set.
func TextField(spec FieldSpec, cell string) (pgtype.Text, error) {
	text := ToPgText(cell)
	if !text.Valid && spec.Required {
		return text, errRequired(spec)
	}
	return text, nil
}

func errRequired(spec FieldSpec) error {
	return ValidationError{Field: spec.Name, Message: "required field is empty"}
}

// ApplyFutureHirePolicy handles hire dates later than opts.Now.
// "accept" keeps the value, "null" drops it and "reject" fails the row.
func ApplyFutureHirePolicy(spec FieldSpec, ts pgtype.Timestamptz, opts ValidateOptions) (pgtype.Timestamptz, error) {
	if !ts.Valid || opts.Now.IsZero() || !ts.Time.After(opts.Now) {
		return ts, nil
	}

	switch strings.ToLower(opts.FutureHirePolicy) {
	case config.FutureHireNull:
		return pgtype.Timestamptz{Valid: false}, nil
	case config.FutureHireReject:
		return ts, ValidationError{
			Field:   spec.Name,
			Message: "hire date is in the future: " + ts.Time.Format(HireTimeLayout),
		}
	default:
		return ts, nil
	}
}
