package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"delphi/internal/provenance/models"
	"delphi/internal/provenance/ports"
	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
	"delphi/pkg/platform/audit"
	"delphi/pkg/platform/sentinel"
	"delphi/pkg/requestcontext"
)

// Sign attests propertyID on behalf of caller acting as authority for typeID.
//
// A caller whose authority entry lacks typeID is refused. A caller with no
// entry at all is allowed unless strict signer authority is enabled.
func (s *Service) Sign(ctx context.Context, caller id.AccountID, propertyID id.PropertyID, typeID id.TypeID, timestamp time.Time) (outcome models.Outcome, err error) {
	ctx, span := s.tracer.Start(ctx, "provenance.Sign", trace.WithAttributes(
		attribute.String("property.id", propertyID.String()),
		attribute.String("property.type_id", typeID.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "sign failed")
		} else {
			span.SetAttributes(attribute.String("ledger.outcome", outcome.String()))
		}
		span.End()
	}()

	if caller.IsNil() {
		return "", dErrors.New(dErrors.CodeUnauthorized, "authenticated caller required")
	}
	if propertyID.IsNil() {
		return "", dErrors.New(dErrors.CodeValidation, "property id is required")
	}
	if typeID.IsNil() {
		return "", dErrors.New(dErrors.CodeValidation, "type id is required")
	}
	if err := s.authorizeSigner(ctx, caller, typeID); err != nil {
		return "", err
	}
	if timestamp.IsZero() {
		timestamp = requestcontext.Now(ctx)
	}
	timestamp = timestamp.UTC()

	start := time.Now()
	var signedType id.TypeID
	outcome = models.OutcomeApplied
	err = s.ledger.RunInTx(ctx, func(txCtx context.Context, l ports.Ledger) error {
		p, err := l.GetProperty(txCtx, propertyID)
		if errors.Is(err, sentinel.ErrNotFound) {
			outcome = models.OutcomeNotFound
			return nil
		}
		if err != nil {
			return ledgerError(err, "failed to load property")
		}
		signedType = p.TypeID
		p.Attest(caller, timestamp)
		if err := l.PutProperty(txCtx, p); err != nil {
			return ledgerError(err, "failed to store attestation")
		}
		return s.emit(txCtx, audit.Event{
			Action:     audit.EventPropertyDocumentSigned,
			Actor:      caller,
			PropertyID: propertyID,
			TypeID:     typeID,
		})
	})
	if err != nil {
		return "", ledgerError(err, "failed to sign property")
	}
	s.metrics.ObserveMutation("sign", time.Since(start).Seconds())

	if outcome == models.OutcomeNotFound {
		s.metrics.IncrementNotFound("sign")
		return outcome, nil
	}
	s.metrics.IncrementSignatures()
	if signedType != typeID {
		s.logger.WarnContext(ctx, "attestation type differs from the property's type",
			"caller", caller,
			"property_id", propertyID,
			"type_id", typeID,
			"property_type_id", signedType,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	s.logger.InfoContext(ctx, "property document signed",
		"caller", caller,
		"property_id", propertyID,
		"type_id", typeID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return outcome, nil
}

func (s *Service) authorizeSigner(ctx context.Context, caller id.AccountID, typeID id.TypeID) error {
	hasEntry, owns, err := s.authority.OwnsType(ctx, caller, typeID)
	if err != nil {
		return ledgerError(err, "failed to check signer authority")
	}
	if owns {
		return nil
	}
	if hasEntry || s.strictSigners {
		s.logger.WarnContext(ctx, "signature refused",
			"caller", caller,
			"type_id", typeID,
			"has_authority_entry", hasEntry,
			"request_id", requestcontext.RequestID(ctx),
		)
		return dErrors.New(dErrors.CodeUnauthorizedAccount, "caller is not an authority for this property type")
	}
	return nil
}
