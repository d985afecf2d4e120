package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	dErrors "delphi/pkg/domain-errors"
)

// maxIDLength bounds caller-chosen identifiers at the trust boundary.
const maxIDLength = 256

// AccountID is the opaque identifier of an authenticated caller.
type AccountID string

// PropertyID identifies a canonical property record. Chosen by the claimant.
type PropertyID string

// TypeID identifies a property-type schema. Chosen by the registering authority.
type TypeID string

func (id AccountID) String() string  { return string(id) }
func (id PropertyID) String() string { return string(id) }
func (id TypeID) String() string     { return string(id) }

func (id AccountID) IsNil() bool  { return id == "" }
func (id PropertyID) IsNil() bool { return id == "" }
func (id TypeID) IsNil() bool     { return id == "" }

// ParseAccountID validates a caller identifier supplied by the invocation layer.
func ParseAccountID(s string) (AccountID, error) {
	v, err := parseOpaque("account id", s)
	return AccountID(v), err
}

// ParsePropertyID validates a caller-chosen property identifier.
func ParsePropertyID(s string) (PropertyID, error) {
	v, err := parseOpaque("property id", s)
	return PropertyID(v), err
}

// ParseTypeID validates a caller-chosen property-type identifier.
func ParseTypeID(s string) (TypeID, error) {
	v, err := parseOpaque("type id", s)
	return TypeID(v), err
}

// parseOpaque accepts any printable UTF-8 string up to maxIDLength bytes.
// Control characters are rejected so identifiers never collide with the
// listing delimiters.
func parseOpaque(kind, s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > maxIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, kind+" is too long")
	}
	if !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, kind+" must be valid UTF-8")
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, kind+" contains invalid characters")
		}
	}
	return s, nil
}
