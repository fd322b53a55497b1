package core

// convert.go provides type conversion functions for CSV cells to PostgreSQL types.
//
// The feeds come from a dataframe export, so absent values show up as empty
// cells or as textual null markers ("NULL", "NaN"). Numeric ids are sometimes
// written as floats ("12.0"). All ToPg* functions return pgtype values with
// Valid=false for null or unparseable input.

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// HireTimeLayout is the ISO 8601 UTC layout used by the hired employees feed.
const HireTimeLayout = "2006-01-02T15:04:05Z"

var nullTokens = map[string]struct{}{
	"":     {},
	"NULL": {},
	"null": {},
	"NaN":  {},
	"nan":  {},
}

var (
	errNotInteger  = errors.New("must be an integer")
	errNotPositive = errors.New("must be greater than 0")
)

// cleanCell trims s and drops NUL bytes, which PostgreSQL text rejects.
func cleanCell(s string) string {
	if strings.IndexByte(s, 0) >= 0 {
		s = strings.ReplaceAll(s, "\x00", "")
	}
	return strings.TrimSpace(s)
}

// IsNull reports whether a cell represents an absent value.
func IsNull(s string) bool {
	_, ok := nullTokens[cleanCell(s)]
	return ok
}

// ParseID parses a positive integer identifier. Float notation with a zero
// fraction ("7.0") is accepted.
func ParseID(s string) (int64, error) {
	s = cleanCell(s)

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if ferr != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) ||
			f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, errNotInteger
		}
		n = int64(f)
	}

	if n <= 0 {
		return 0, errNotPositive
	}
	return n, nil
}

// ToPgText converts a string to pgtype.Text with NUL bytes removed.
// Returns invalid for null tokens and whitespace-only strings.
func ToPgText(s string) pgtype.Text {
	if IsNull(s) {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: cleanCell(s), Valid: true}
}

// ToPgTimestamptz parses s with HireTimeLayout.
// Returns invalid for null or unparseable values.
func ToPgTimestamptz(s string) pgtype.Timestamptz {
	if IsNull(s) {
		return pgtype.Timestamptz{Valid: false}
	}
	t, err := time.Parse(HireTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}

// ToPgInt8 converts a reference id to pgtype.Int8.
// Returns invalid for null, non-integer or non-positive values.
func ToPgInt8(s string) pgtype.Int8 {
	if IsNull(s) {
		return pgtype.Int8{Valid: false}
	}
	n, err := ParseID(s)
	if err != nil {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: n, Valid: true}
}
