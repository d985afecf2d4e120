package models

import (
	"slices"
	"time"

	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
)

// TransferRecord is one entry of a property's provenance: who held it before
// the transfer and when the transfer happened.
type TransferRecord struct {
	PriorOwner    id.AccountID
	TransferredAt time.Time
}

// Attestation records the authority that signed the current claim.
// The zero value means unattested.
type Attestation struct {
	AttestedAt time.Time
	Authority  id.AccountID
}

func (a Attestation) IsAttested() bool {
	return !a.Authority.IsNil()
}

// Property is the canonical ownership record for one property id.
type Property struct {
	ID          id.PropertyID
	Claimer     id.AccountID
	ClaimAddr   id.DocumentAddr
	TypeID      id.TypeID
	History     []TransferRecord
	Attestation Attestation
}

// NewClaim builds an unattested property with an empty history.
func NewClaim(propertyID id.PropertyID, claimer id.AccountID, claimAddr id.DocumentAddr, typeID id.TypeID) (*Property, error) {
	if propertyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "property id is required")
	}
	if claimer.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "claimer is required")
	}
	if claimAddr.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "claim address is required")
	}
	if typeID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "type id is required")
	}
	return &Property{
		ID:        propertyID,
		Claimer:   claimer,
		ClaimAddr: claimAddr,
		TypeID:    typeID,
		History:   []TransferRecord{},
	}, nil
}

// Clone returns a deep copy.
func (p *Property) Clone() *Property {
	c := *p
	c.History = slices.Clone(p.History)
	if c.History == nil {
		c.History = []TransferRecord{}
	}
	return &c
}

// ApplyWholeTransfer hands the property to recipient in place. The sender is
// appended to the history and the attestation is cleared.
func (p *Property) ApplyWholeTransfer(sender, recipient id.AccountID, claimAddr id.DocumentAddr, at time.Time) {
	p.Claimer = recipient
	p.ClaimAddr = claimAddr
	p.History = append(p.History, TransferRecord{PriorOwner: sender, TransferredAt: at})
	p.Attestation = Attestation{}
}

// Split derives the two records that replace p in a partial transfer. Each
// starts a fresh history seeded with the split and is unattested.
func (p *Property) Split(sender id.AccountID, req TransferRequest, at time.Time) (senders *Property, recipients *Property) {
	seed := TransferRecord{PriorOwner: sender, TransferredAt: at}
	senders = &Property{
		ID:        req.SendersNewPropertyID,
		Claimer:   sender,
		ClaimAddr: req.SendersClaimAddr,
		TypeID:    p.TypeID,
		History:   []TransferRecord{seed},
	}
	recipients = &Property{
		ID:        req.RecipientsNewPropertyID,
		Claimer:   req.Recipient,
		ClaimAddr: req.RecipientsClaimAddr,
		TypeID:    p.TypeID,
		History:   []TransferRecord{seed},
	}
	return senders, recipients
}

// Attest marks the property as signed by authority.
func (p *Property) Attest(authority id.AccountID, at time.Time) {
	p.Attestation = Attestation{AttestedAt: at, Authority: authority}
}

// PriorOwners lists the history's owners in transfer order.
func (p *Property) PriorOwners() []id.AccountID {
	owners := make([]id.AccountID, 0, len(p.History))
	for _, rec := range p.History {
		owners = append(owners, rec.PriorOwner)
	}
	return owners
}
