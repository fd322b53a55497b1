package core

// streaming.go normalises upload bytes before they reach the CSV reader.
//
//   - A UTF-8 BOM is stripped; a UTF-16 BOM switches decoding to UTF-16
//     (spreadsheet exports on Windows produce both).
//   - Invalid UTF-8 sequences are replaced with U+FFFD.
//   - Bytes are counted and the upload size limit is enforced.

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewTextReader returns a reader that strips byte order marks and replaces
// invalid UTF-8 with the Unicode replacement character.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// CountingReader wraps an io.Reader to track bytes read. When Limit is
// positive, reading more than Limit bytes fails with ErrFileTooLarge.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Limit     int64
}

// NewCountingReader creates a counting reader with an optional byte limit
// (0 means unlimited).
func NewCountingReader(r io.Reader, limit int64) *CountingReader {
	return &CountingReader{
		reader: r,
		Limit:  limit,
	}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	if r.Limit > 0 {
		// Allow one byte past the limit so an exact-size file is accepted.
		remaining := r.Limit + 1 - r.BytesRead
		if remaining <= 0 {
			return 0, ErrFileTooLarge
		}
		if int64(len(p)) > remaining {
			p = p[:remaining]
		}
	}

	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)

	if r.Limit > 0 && r.BytesRead > r.Limit {
		return 0, ErrFileTooLarge
	}
	return n, err
}

// WrapForStreaming applies the size limit to the raw bytes, then text
// normalisation. The limit is measured on the original payload, before
// any decoding expands it.
func WrapForStreaming(r io.Reader, limit int64) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r, limit)
	return NewTextReader(counter), counter
}
