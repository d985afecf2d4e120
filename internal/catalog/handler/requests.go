package handler

import (
	"time"

	"delphi/internal/catalog/models"
	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
)

// RegisterTypeRequest is the body of POST /property-types.
type RegisterTypeRequest struct {
	TypeID           string `json:"type_id"`
	RequirementsAddr string `json:"requirements_addr"`

	parsedTypeID id.TypeID
}

func (r *RegisterTypeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	typeID, err := id.ParseTypeID(r.TypeID)
	if err != nil {
		return err
	}
	r.parsedTypeID = typeID
	if r.RequirementsAddr == "" {
		return dErrors.New(dErrors.CodeValidation, "requirements_addr is required")
	}
	return nil
}

// PropertyTypeResponse describes one registered type.
type PropertyTypeResponse struct {
	TypeID           string    `json:"type_id"`
	RequirementsAddr string    `json:"requirements_addr"`
	Authority        string    `json:"authority"`
	RegisteredAt     time.Time `json:"registered_at"`
}

func ToPropertyTypeResponse(pt models.PropertyType) PropertyTypeResponse {
	return PropertyTypeResponse{
		TypeID:           pt.ID.String(),
		RequirementsAddr: pt.RequirementsAddr.String(),
		Authority:        pt.Authority.String(),
		RegisteredAt:     pt.RegisteredAt,
	}
}
