package listing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delphi/internal/query/listing"
	"delphi/pkg/testutil"
)

func TestEncodeLayout(t *testing.T) {
	b, err := listing.Encode([][]string{{"residential", "QmA"}, {"farmland", "QmB"}})
	require.NoError(t, err)
	assert.Equal(t, []byte("residential\x1fQmA\x1efarmland\x1fQmB"), b)
}

func TestEncodeEmpty(t *testing.T) {
	b, err := listing.Encode(nil)
	require.NoError(t, err)
	assert.Empty(t, b)
	assert.Empty(t, testutil.DecodeWire(b))
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		records [][]string
	}{
		{name: "single id list", records: [][]string{{"lot-1"}, {"lot-2"}, {"lot-3"}}},
		{name: "pairs", records: [][]string{{"residential", "QmA"}, {"farmland", "bafy"}}},
		{name: "empty fields survive", records: [][]string{{"acct-a", "acct-b"}, {""}, {""}}},
		{name: "utf8", records: [][]string{{"solar-é", "Qm✓"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := listing.Encode(tt.records)
			require.NoError(t, err)
			assert.Equal(t, tt.records, testutil.DecodeWire(b))
		})
	}
}

func TestEncodeRejectsDelimiters(t *testing.T) {
	_, err := listing.Encode([][]string{{"bad\x1eid"}})
	assert.ErrorIs(t, err, listing.ErrDelimiterInField)
	_, err = listing.Encode([][]string{{"ok", "bad\x1ffield"}})
	assert.ErrorIs(t, err, listing.ErrDelimiterInField)
}

func TestTimeFormatting(t *testing.T) {
	at := time.Date(2026, 7, 1, 12, 0, 0, 5_000_000, time.UTC)
	s := listing.FormatTime(at)
	assert.Equal(t, "1782907200005", s)
	got, err := testutil.ParseWireTime(s)
	require.NoError(t, err)
	assert.True(t, at.Equal(got))

	assert.Empty(t, listing.FormatTime(time.Time{}))
	zero, err := testutil.ParseWireTime("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = testutil.ParseWireTime("yesterday")
	assert.Error(t, err)
}

func TestLoneEmptyFieldReadsAsNoRecords(t *testing.T) {
	b, err := listing.Encode([][]string{{""}})
	require.NoError(t, err)
	assert.Empty(t, b)
	assert.Empty(t, testutil.DecodeWire(b))
}
