package models

import (
	"time"

	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
)

// PropertyType is a schema registered by an authority: a type id plus the
// address of the external requirements document.
type PropertyType struct {
	ID               id.TypeID
	RequirementsAddr id.DocumentAddr
	Authority        id.AccountID
	RegisteredAt     time.Time
}

func NewPropertyType(typeID id.TypeID, requirements id.DocumentAddr, authority id.AccountID, registeredAt time.Time) (*PropertyType, error) {
	if typeID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "type id is required")
	}
	if requirements.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "requirements address is required")
	}
	if authority.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "authority is required")
	}
	return &PropertyType{
		ID:               typeID,
		RequirementsAddr: requirements,
		Authority:        authority,
		RegisteredAt:     registeredAt.UTC(),
	}, nil
}

// Contains reports whether types holds an entry with typeID.
func Contains(types []PropertyType, typeID id.TypeID) bool {
	for _, t := range types {
		if t.ID == typeID {
			return true
		}
	}
	return false
}
