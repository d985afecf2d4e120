package handler

import (
	"time"

	catalogtransport "delphi/internal/catalog/handler"
	catalogmodels "delphi/internal/catalog/models"
	"delphi/internal/query/listing"
	"delphi/internal/query/service"
	id "delphi/pkg/domain"
)

type PropertyTypesResponse struct {
	Authority     string                                  `json:"authority"`
	PropertyTypes []catalogtransport.PropertyTypeResponse `json:"property_types"`
}

type PropertyClaimsResponse struct {
	TypeID      string   `json:"type_id"`
	PropertyIDs []string `json:"property_ids"`
}

type AttestationResponse struct {
	PropertyID string    `json:"property_id"`
	AttestedAt time.Time `json:"attested_at,omitzero"`
	Authority  string    `json:"authority,omitempty"`
}

type PropertyDetailResponse struct {
	PropertyID    string               `json:"property_id"`
	Claimer       string               `json:"claimer"`
	ClaimerName   string               `json:"claimer_name,omitempty"`
	ClaimAddr     string               `json:"claim_addr"`
	TypeID        string               `json:"type_id"`
	HistoryLength int                  `json:"history_length"`
	Attestation   *AttestationResponse `json:"attestation,omitempty"`
}

type AttestationStatusResponse struct {
	PropertyID  string    `json:"property_id"`
	Found       bool      `json:"found"`
	PriorOwners []string  `json:"prior_owners"`
	AttestedAt  time.Time `json:"attested_at,omitzero"`
	Authority   string    `json:"authority,omitempty"`
}

func toPropertyTypesResponse(authority id.AccountID, types []catalogmodels.PropertyType) PropertyTypesResponse {
	out := PropertyTypesResponse{
		Authority:     authority.String(),
		PropertyTypes: make([]catalogtransport.PropertyTypeResponse, 0, len(types)),
	}
	for _, pt := range types {
		out.PropertyTypes = append(out.PropertyTypes, catalogtransport.ToPropertyTypeResponse(pt))
	}
	return out
}

func toPropertyClaimsResponse(typeID id.TypeID, ids []id.PropertyID) PropertyClaimsResponse {
	return PropertyClaimsResponse{TypeID: typeID.String(), PropertyIDs: idStrings(ids)}
}

func toPropertyDetailResponse(d *service.PropertyDetail) PropertyDetailResponse {
	out := PropertyDetailResponse{
		PropertyID:    d.PropertyID.String(),
		Claimer:       d.Claimer.String(),
		ClaimerName:   d.ClaimerName,
		ClaimAddr:     d.ClaimAddr.String(),
		TypeID:        d.TypeID.String(),
		HistoryLength: d.HistoryLength,
	}
	if d.Attestation.IsAttested() {
		out.Attestation = &AttestationResponse{
			PropertyID: d.PropertyID.String(),
			AttestedAt: d.Attestation.AttestedAt,
			Authority:  d.Attestation.Authority.String(),
		}
	}
	return out
}

func toAttestationStatusResponse(propertyID id.PropertyID, st *service.AttestationStatus) AttestationStatusResponse {
	owners := make([]string, 0, len(st.PriorOwners))
	for _, o := range st.PriorOwners {
		owners = append(owners, o.String())
	}
	return AttestationStatusResponse{
		PropertyID:  propertyID.String(),
		Found:       st.Found,
		PriorOwners: owners,
		AttestedAt:  st.AttestedAt,
		Authority:   st.Authority.String(),
	}
}

func idStrings(ids []id.PropertyID) []string {
	out := make([]string, 0, len(ids))
	for _, pid := range ids {
		out = append(out, pid.String())
	}
	return out
}

// Wire records. Each listing is one record per item; a property detail is a
// single record; an attestation status is owners, timestamp, authority.

func typeRecords(types []catalogmodels.PropertyType) [][]string {
	records := make([][]string, 0, len(types))
	for _, pt := range types {
		records = append(records, []string{pt.ID.String(), pt.RequirementsAddr.String()})
	}
	return records
}

func claimRecords(ids []id.PropertyID) [][]string {
	records := make([][]string, 0, len(ids))
	for _, pid := range ids {
		records = append(records, []string{pid.String()})
	}
	return records
}

func detailRecords(d *service.PropertyDetail) [][]string {
	return [][]string{{d.Claimer.String(), d.ClaimAddr.String(), d.TypeID.String()}}
}

func attestationRecords(st *service.AttestationStatus) [][]string {
	owners := make([]string, 0, len(st.PriorOwners))
	for _, o := range st.PriorOwners {
		owners = append(owners, o.String())
	}
	if len(owners) == 0 {
		owners = []string{""}
	}
	return [][]string{owners, {listing.FormatTime(st.AttestedAt)}, {st.Authority.String()}}
}
