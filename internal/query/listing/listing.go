// Package listing encodes query results in the delimited wire form: fields
// separated by the ASCII unit separator and records by the record separator.
package listing

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	FieldSep  byte = 0x1F
	RecordSep byte = 0x1E
)

// ContentType is served for wire-encoded responses.
const ContentType = "application/octet-stream"

// ErrDelimiterInField rejects fields that would collide with the framing;
// the wire form has no escaping.
var ErrDelimiterInField = errors.New("field contains a wire delimiter")

// Encode joins records with RecordSep and each record's fields with FieldSep.
// The framing cannot tell no records from one record holding a single empty
// field: both encode to zero bytes and read back as no records.
func Encode(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	for i, record := range records {
		if i > 0 {
			buf.WriteByte(RecordSep)
		}
		for j, field := range record {
			if j > 0 {
				buf.WriteByte(FieldSep)
			}
			if err := checkField(field); err != nil {
				return nil, fmt.Errorf("record %d field %d: %w", i, j, err)
			}
			buf.WriteString(field)
		}
	}
	return buf.Bytes(), nil
}

func checkField(field string) error {
	if bytes.IndexByte([]byte(field), FieldSep) >= 0 || bytes.IndexByte([]byte(field), RecordSep) >= 0 {
		return ErrDelimiterInField
	}
	return nil
}

// FormatTime renders t as Unix milliseconds, or the empty string for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}
