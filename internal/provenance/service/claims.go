package service

import (
	"context"
	"time"

	"delphi/internal/provenance/models"
	"delphi/internal/provenance/ports"
	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
	"delphi/pkg/platform/audit"
	"delphi/pkg/requestcontext"
)

// RegisterClaim records caller as claimer of propertyID under typeID.
// An existing record at the id is overwritten (last writer wins) and the id
// is indexed under typeID once.
func (s *Service) RegisterClaim(ctx context.Context, caller id.AccountID, typeID id.TypeID, propertyID id.PropertyID, claimAddr id.DocumentAddr) (*models.Property, error) {
	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authenticated caller required")
	}
	p, err := models.NewClaim(propertyID, caller, claimAddr, typeID)
	if err != nil {
		if de, ok := dErrors.From(err); ok && de.Code == dErrors.CodeInvariantViolation {
			return nil, dErrors.New(dErrors.CodeValidation, de.Message)
		}
		return nil, err
	}

	start := time.Now()
	err = s.ledger.RunInTx(ctx, func(txCtx context.Context, l ports.Ledger) error {
		if err := putReplacing(txCtx, l, p); err != nil {
			return ledgerError(err, "failed to store claim")
		}
		if err := l.AddClaims(txCtx, typeID, propertyID); err != nil {
			return ledgerError(err, "failed to index claim")
		}
		return s.emit(txCtx, audit.Event{
			Action:     audit.EventPropertyClaimRegistered,
			Actor:      caller,
			PropertyID: propertyID,
			TypeID:     typeID,
		})
	})
	if err != nil {
		return nil, ledgerError(err, "failed to register claim")
	}
	s.metrics.ObserveMutation("register_claim", time.Since(start).Seconds())
	s.metrics.IncrementClaims()

	s.logger.InfoContext(ctx, "property claim registered",
		"caller", caller,
		"property_id", propertyID,
		"type_id", typeID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return p, nil
}

// ListClaims returns the property ids claimed under typeID in insertion order.
func (s *Service) ListClaims(ctx context.Context, typeID id.TypeID) ([]id.PropertyID, error) {
	ids, err := s.ledger.ClaimIDs(ctx, typeID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list claims")
	}
	if ids == nil {
		ids = []id.PropertyID{}
	}
	return ids, nil
}
