// Package service is the read-only query façade over the account directory,
// the property-type catalog and the provenance ledger.
package service

import (
	"context"
	"log/slog"
	"time"

	catalogmodels "delphi/internal/catalog/models"
	provenancemodels "delphi/internal/provenance/models"
	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
)

type PropertyReader interface {
	GetProperty(ctx context.Context, propertyID id.PropertyID) (*provenancemodels.Property, error)
	ListClaims(ctx context.Context, typeID id.TypeID) ([]id.PropertyID, error)
}

type TypeLister interface {
	ListTypes(ctx context.Context, authority id.AccountID) ([]catalogmodels.PropertyType, error)
}

type AccountDirectory interface {
	Exists(ctx context.Context, caller id.AccountID) (bool, string, error)
}

// PropertyDetail is the current state of one property. Found is false when
// no record exists at the id.
type PropertyDetail struct {
	Found         bool
	PropertyID    id.PropertyID
	Claimer       id.AccountID
	ClaimerName   string
	ClaimAddr     id.DocumentAddr
	TypeID        id.TypeID
	HistoryLength int
	Attestation   provenancemodels.Attestation
}

// AttestationStatus lists prior owners in transfer order and the current
// attestation. Unknown and unattested properties have a zero AttestedAt.
type AttestationStatus struct {
	Found       bool
	PriorOwners []id.AccountID
	AttestedAt  time.Time
	Authority   id.AccountID
}

type Service struct {
	properties PropertyReader
	types      TypeLister
	accounts   AccountDirectory
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(properties PropertyReader, types TypeLister, accounts AccountDirectory, opts ...Option) *Service {
	s := &Service{properties: properties, types: types, accounts: accounts, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) PropertyDetail(ctx context.Context, propertyID id.PropertyID) (*PropertyDetail, error) {
	p, err := s.properties.GetProperty(ctx, propertyID)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		s.logger.DebugContext(ctx, "property detail requested for unknown id", "property_id", propertyID)
		return &PropertyDetail{PropertyID: propertyID}, nil
	}
	if err != nil {
		return nil, err
	}
	_, name, err := s.accounts.Exists(ctx, p.Claimer)
	if err != nil {
		return nil, err
	}
	return &PropertyDetail{
		Found:         true,
		PropertyID:    p.ID,
		Claimer:       p.Claimer,
		ClaimerName:   name,
		ClaimAddr:     p.ClaimAddr,
		TypeID:        p.TypeID,
		HistoryLength: len(p.History),
		Attestation:   p.Attestation,
	}, nil
}

func (s *Service) AttestationStatus(ctx context.Context, propertyID id.PropertyID) (*AttestationStatus, error) {
	p, err := s.properties.GetProperty(ctx, propertyID)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return &AttestationStatus{PriorOwners: []id.AccountID{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &AttestationStatus{
		Found:       true,
		PriorOwners: p.PriorOwners(),
		AttestedAt:  p.Attestation.AttestedAt,
		Authority:   p.Attestation.Authority,
	}, nil
}

// PtypeDocuments lists the types registered by authority, duplicates included.
func (s *Service) PtypeDocuments(ctx context.Context, authority id.AccountID) ([]catalogmodels.PropertyType, error) {
	return s.types.ListTypes(ctx, authority)
}

// PropertyClaims lists the property ids claimed under typeID.
func (s *Service) PropertyClaims(ctx context.Context, typeID id.TypeID) ([]id.PropertyID, error) {
	return s.properties.ListClaims(ctx, typeID)
}
