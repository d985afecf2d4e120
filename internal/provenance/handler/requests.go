package handler

import (
	"time"

	"delphi/internal/provenance/models"
	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
)

// RegisterClaimRequest is the body of POST /claims.
type RegisterClaimRequest struct {
	TypeID     string `json:"type_id"`
	PropertyID string `json:"property_id"`
	ClaimAddr  string `json:"claim_addr"`

	parsedTypeID     id.TypeID
	parsedPropertyID id.PropertyID
}

func (r *RegisterClaimRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	typeID, err := id.ParseTypeID(r.TypeID)
	if err != nil {
		return err
	}
	propertyID, err := id.ParsePropertyID(r.PropertyID)
	if err != nil {
		return err
	}
	if r.ClaimAddr == "" {
		return dErrors.New(dErrors.CodeValidation, "claim_addr is required")
	}
	r.parsedTypeID = typeID
	r.parsedPropertyID = propertyID
	return nil
}

// TransferRequest is the body of POST /properties/{propertyID}/transfers.
// Supplying recipients_claim_addr splits the property.
type TransferRequest struct {
	Recipient               string    `json:"recipient"`
	SendersClaimAddr        string    `json:"senders_claim_addr"`
	SendersNewPropertyID    string    `json:"senders_new_property_id,omitempty"`
	RecipientsClaimAddr     string    `json:"recipients_claim_addr,omitempty"`
	RecipientsNewPropertyID string    `json:"recipients_new_property_id,omitempty"`
	Timestamp               time.Time `json:"timestamp,omitzero"`

	parsedRecipient id.AccountID
}

func (r *TransferRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	recipient, err := id.ParseAccountID(r.Recipient)
	if err != nil {
		return err
	}
	r.parsedRecipient = recipient
	return nil
}

// SignRequest is the body of POST /properties/{propertyID}/signatures.
type SignRequest struct {
	TypeID    string    `json:"type_id"`
	Timestamp time.Time `json:"timestamp,omitzero"`

	parsedTypeID id.TypeID
}

func (r *SignRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	typeID, err := id.ParseTypeID(r.TypeID)
	if err != nil {
		return err
	}
	r.parsedTypeID = typeID
	return nil
}

// PropertyResponse describes a freshly registered claim.
type PropertyResponse struct {
	PropertyID string `json:"property_id"`
	Claimer    string `json:"claimer"`
	ClaimAddr  string `json:"claim_addr"`
	TypeID     string `json:"type_id"`
}

func toPropertyResponse(p *models.Property) PropertyResponse {
	return PropertyResponse{
		PropertyID: p.ID.String(),
		Claimer:    p.Claimer.String(),
		ClaimAddr:  p.ClaimAddr.String(),
		TypeID:     p.TypeID.String(),
	}
}

// OutcomeResponse reports whether a mutation found its target.
type OutcomeResponse struct {
	Outcome    string `json:"outcome"`
	PropertyID string `json:"property_id"`
}
