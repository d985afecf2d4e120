package testutil

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"delphi/internal/query/listing"
)

// DecodeWire splits a delimited wire body back into records and fields.
// Empty input is no records.
func DecodeWire(b []byte) [][]string {
	if len(b) == 0 {
		return [][]string{}
	}
	rawRecords := bytes.Split(b, []byte{listing.RecordSep})
	records := make([][]string, len(rawRecords))
	for i, raw := range rawRecords {
		fields := bytes.Split(raw, []byte{listing.FieldSep})
		records[i] = make([]string, len(fields))
		for j, f := range fields {
			records[i][j] = string(f)
		}
	}
	return records
}

// ParseWireTime reads a Unix-millisecond wire timestamp; empty is the zero time.
func ParseWireTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse wire timestamp: %w", err)
	}
	return time.UnixMilli(ms).UTC(), nil
}
