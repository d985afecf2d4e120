package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParsePropertyID checks parsing never panics and that accepted ids
// round-trip unchanged.
func FuzzParsePropertyID(f *testing.F) {
	f.Add("")
	f.Add("lot-42")
	f.Add("'; DROP TABLE properties;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("lot-42\x1esuffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParsePropertyID(input)
		if err != nil {
			return
		}
		roundTrip, err := ParsePropertyID(id.String())
		if err != nil {
			t.Errorf("accepted id failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed id value")
		}
		if !utf8.ValidString(input) {
			t.Error("non-UTF8 input was accepted")
		}
	})
}
