package domain

import (
	"strings"

	"github.com/ipfs/go-cid"

	dErrors "delphi/pkg/domain-errors"
)

// DocumentAddr points at an externally stored document: the requirements of a
// property type or the claim proving ownership of a property. Usually an IPFS CID.
type DocumentAddr string

func (a DocumentAddr) String() string { return string(a) }

func (a DocumentAddr) IsNil() bool { return a == "" }

// IsCID reports whether the address decodes as a content identifier.
func (a DocumentAddr) IsCID() bool {
	_, err := cid.Decode(string(a))
	return err == nil
}

// ParseDocumentAddr validates a document address. In strict mode the address
// must decode as a CID and is returned in its canonical string form.
func ParseDocumentAddr(s string, strict bool) (DocumentAddr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "document address is required")
	}
	if !strict {
		v, err := parseOpaque("document address", s)
		return DocumentAddr(v), err
	}
	c, err := cid.Decode(s)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "document address must be a valid CID")
	}
	return DocumentAddr(c.String()), nil
}
