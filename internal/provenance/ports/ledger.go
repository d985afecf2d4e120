// Package ports defines the storage contract of the provenance ledger.
//
// The property table and the claim index are only ever written through a
// Ledger handed out by RunInTx, so both change together or not at all.
package ports

import (
	"context"

	"delphi/internal/provenance/models"
	id "delphi/pkg/domain"
)

// LedgerReader serves reads outside a transaction.
type LedgerReader interface {
	// GetProperty returns a copy of the record or sentinel.ErrNotFound.
	GetProperty(ctx context.Context, propertyID id.PropertyID) (*models.Property, error)
	// ClaimIDs returns the claim index entry for typeID in insertion order.
	// An unknown type yields an empty slice.
	ClaimIDs(ctx context.Context, typeID id.TypeID) ([]id.PropertyID, error)
}

// Ledger is the transactional view passed to RunInTx callbacks.
type Ledger interface {
	LedgerReader
	// PutProperty creates or replaces the record, history included.
	PutProperty(ctx context.Context, p *models.Property) error
	DeleteProperty(ctx context.Context, propertyID id.PropertyID) error
	// AddClaims appends ids missing from the type's entry, keeping order.
	AddClaims(ctx context.Context, typeID id.TypeID, propertyIDs ...id.PropertyID) error
	RemoveClaim(ctx context.Context, typeID id.TypeID, propertyID id.PropertyID) error
}

// LedgerStore is a ledger backend.
type LedgerStore interface {
	LedgerReader
	// RunInTx applies every write fn makes through ledger atomically when fn
	// returns nil and discards them otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, ledger Ledger) error) error
}
