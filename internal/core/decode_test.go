package core

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		width     int
		wantRows  [][]string
		wantLines []int
		wantErrs  int
	}{
		{
			name:      "simple rows",
			input:     "1,Supply Chain\n2,Maintenance",
			width:     2,
			wantRows:  [][]string{{"1", "Supply Chain"}, {"2", "Maintenance"}},
			wantLines: []int{1, 2},
		},
		{
			name:      "quoted field with comma",
			input:     `1,"Sales, EMEA"` + "\n",
			width:     2,
			wantRows:  [][]string{{"1", "Sales, EMEA"}},
			wantLines: []int{1},
		},
		{
			name:      "CRLF line endings",
			input:     "1,a\r\n2,b\r\n",
			width:     2,
			wantRows:  [][]string{{"1", "a"}, {"2", "b"}},
			wantLines: []int{1, 2},
		},
		{
			name:      "leading space trimmed",
			input:     "1, Legal",
			width:     2,
			wantRows:  [][]string{{"1", "Legal"}},
			wantLines: []int{1},
		},
		{
			name:      "short row padded with empty cells",
			input:     "4535,Marcelo Gonzalez\n",
			width:     5,
			wantRows:  [][]string{{"4535", "Marcelo Gonzalez", "", "", ""}},
			wantLines: []int{1},
		},
		{
			name:      "trailing empty cells dropped",
			input:     "1,Engineering,,\n",
			width:     2,
			wantRows:  [][]string{{"1", "Engineering"}},
			wantLines: []int{1},
		},
		{
			name:      "long row is a row error",
			input:     "1,a\n2,b,extra\n3,c",
			width:     2,
			wantRows:  [][]string{{"1", "a"}, {"3", "c"}},
			wantLines: []int{1, 3},
			wantErrs:  1,
		},
		{
			name:      "blank and empty rows skipped with line numbers kept",
			input:     "1,a\n\n,\n4,d\n",
			width:     2,
			wantRows:  [][]string{{"1", "a"}, {"4", "d"}},
			wantLines: []int{1, 4},
		},
		{
			name:      "quoted newline advances line numbers",
			input:     "1,\"Line 1\nLine 2\"\n2,b",
			width:     2,
			wantRows:  [][]string{{"1", "Line 1\nLine 2"}, {"2", "b"}},
			wantLines: []int{1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input), tt.width)
			require.NoError(t, err)

			var rows [][]string
			var lines []int
			for _, r := range got.Rows {
				rows = append(rows, r.Cells)
				lines = append(lines, r.Line)
			}
			assert.Equal(t, tt.wantRows, rows)
			assert.Equal(t, tt.wantLines, lines)
			assert.Len(t, got.Errors, tt.wantErrs)
			assert.Equal(t, len(tt.wantRows)+tt.wantErrs, got.Total())
		})
	}
}

func TestDecode_LongRowError(t *testing.T) {
	got, err := Decode(strings.NewReader("1,a\n7,b,c\n"), 2)
	require.NoError(t, err)
	require.Len(t, got.Errors, 1)

	assert.Equal(t, 2, got.Errors[0].Line)
	assert.Equal(t, "7", got.Errors[0].ID)
	assert.Equal(t, "expected 2 columns, got 3", got.Errors[0].Reason)
}

func TestDecode_Fatal(t *testing.T) {
	_, err := Decode(strings.NewReader(""), 2)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = Decode(strings.NewReader("\n\n \n"), 2)
	assert.ErrorIs(t, err, ErrEmptyFile)

	// An employees file sent to a two column entity has no usable record.
	_, err = Decode(strings.NewReader("1,Ana,2021-01-01T00:00:00Z,1,1\n2,Bo,2021-02-01T00:00:00Z,1,2\n"), 2)
	assert.ErrorIs(t, err, ErrInvalidCSV)

	boom := errors.New("connection reset by peer")
	_, err = Decode(iotest.ErrReader(boom), 2)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCSV)
}

func TestDecode_SizeLimit(t *testing.T) {
	input := strings.Repeat("1,Engineering\n", 100)
	reader, _ := WrapForStreaming(strings.NewReader(input), 64)

	_, err := Decode(reader, 2)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestIsEmptyRow(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want bool
	}{
		{name: "empty slice", row: []string{}, want: true},
		{name: "multiple empty strings", row: []string{"", "", ""}, want: true},
		{name: "whitespace only cells", row: []string{"   ", "\t", "  \t  "}, want: true},
		{name: "non-empty with empties", row: []string{"", "data", ""}, want: false},
		{name: "number zero is data", row: []string{"0"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isEmptyRow(tt.row))
		})
	}
}
