package models

import (
	"time"

	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
)

// Outcome distinguishes a mutation that was applied from one whose target
// property does not exist.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeNotFound Outcome = "not_found"
)

func (o Outcome) String() string { return string(o) }

// TransferRequest describes a transfer of PropertyID to Recipient.
// A non-empty RecipientsClaimAddr makes it a partial transfer (split).
type TransferRequest struct {
	PropertyID              id.PropertyID
	Recipient               id.AccountID
	SendersClaimAddr        id.DocumentAddr
	SendersNewPropertyID    id.PropertyID
	RecipientsClaimAddr     id.DocumentAddr
	RecipientsNewPropertyID id.PropertyID
	Timestamp               time.Time
}

// IsPartial reports whether the request splits the property.
func (r TransferRequest) IsPartial() bool {
	return !r.RecipientsClaimAddr.IsNil()
}

// Validate checks the request shape. Self-transfer is checked by the engine
// because it depends on the caller.
func (r TransferRequest) Validate() error {
	if r.PropertyID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "property id is required")
	}
	if r.Recipient.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "recipient is required")
	}
	if r.SendersClaimAddr.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "senders claim address is required")
	}
	if !r.IsPartial() {
		return nil
	}
	if r.SendersNewPropertyID.IsNil() || r.RecipientsNewPropertyID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "partial transfer requires both new property ids")
	}
	if r.SendersNewPropertyID == r.RecipientsNewPropertyID {
		return dErrors.New(dErrors.CodeValidation, "partial transfer new property ids must differ")
	}
	return nil
}
