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

// Transfer moves req.PropertyID to req.Recipient, whole or split in two.
// The caller is recorded as prior owner. A missing property yields
// OutcomeNotFound and changes nothing.
func (s *Service) Transfer(ctx context.Context, caller id.AccountID, req models.TransferRequest) (outcome models.Outcome, err error) {
	ctx, span := s.tracer.Start(ctx, "provenance.Transfer", trace.WithAttributes(
		attribute.String("property.id", req.PropertyID.String()),
		attribute.Bool("transfer.partial", req.IsPartial()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "transfer failed")
		} else {
			span.SetAttributes(attribute.String("ledger.outcome", outcome.String()))
		}
		span.End()
	}()

	if caller.IsNil() {
		return "", dErrors.New(dErrors.CodeUnauthorized, "authenticated caller required")
	}
	if req.Recipient == caller {
		return "", dErrors.New(dErrors.CodeCannotTransferToSelf, "recipient must differ from sender")
	}
	if err := req.Validate(); err != nil {
		return "", err
	}
	at := req.Timestamp
	if at.IsZero() {
		at = requestcontext.Now(ctx)
	}
	at = at.UTC()

	start := time.Now()
	outcome = models.OutcomeApplied
	err = s.ledger.RunInTx(ctx, func(txCtx context.Context, l ports.Ledger) error {
		p, err := l.GetProperty(txCtx, req.PropertyID)
		if errors.Is(err, sentinel.ErrNotFound) {
			outcome = models.OutcomeNotFound
			return nil
		}
		if err != nil {
			return ledgerError(err, "failed to load property")
		}

		if req.IsPartial() {
			err = splitProperty(txCtx, l, p, caller, req, at)
		} else {
			p.ApplyWholeTransfer(caller, req.Recipient, req.SendersClaimAddr, at)
			err = l.PutProperty(txCtx, p)
		}
		if err != nil {
			return ledgerError(err, "failed to apply transfer")
		}

		return s.emit(txCtx, audit.Event{
			Action:     audit.EventPropertyTransferred,
			Actor:      caller,
			Recipient:  req.Recipient,
			PropertyID: req.PropertyID,
			TypeID:     p.TypeID,
		})
	})
	if err != nil {
		return "", ledgerError(err, "failed to transfer property")
	}
	s.metrics.ObserveMutation("transfer", time.Since(start).Seconds())

	if outcome == models.OutcomeNotFound {
		s.metrics.IncrementNotFound("transfer")
		s.logger.InfoContext(ctx, "transfer target not found",
			"caller", caller,
			"property_id", req.PropertyID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return outcome, nil
	}

	s.metrics.IncrementTransfers(req.IsPartial())
	attrs := []any{
		"caller", caller,
		"recipient", req.Recipient,
		"property_id", req.PropertyID,
		"partial", req.IsPartial(),
		"request_id", requestcontext.RequestID(ctx),
	}
	if req.IsPartial() {
		attrs = append(attrs,
			"senders_property_id", req.SendersNewPropertyID,
			"recipients_property_id", req.RecipientsNewPropertyID,
		)
	}
	s.logger.InfoContext(ctx, "property transferred", attrs...)
	return outcome, nil
}

// splitProperty replaces p with the sender's and recipient's parts. The old
// id leaves the index before the new ids enter it, so reusing it as one of
// the new ids keeps it indexed exactly once.
func splitProperty(ctx context.Context, l ports.Ledger, p *models.Property, sender id.AccountID, req models.TransferRequest, at time.Time) error {
	if err := l.RemoveClaim(ctx, p.TypeID, p.ID); err != nil {
		return err
	}
	if err := l.DeleteProperty(ctx, p.ID); err != nil {
		return err
	}
	senders, recipients := p.Split(sender, req, at)
	if err := l.AddClaims(ctx, p.TypeID, senders.ID, recipients.ID); err != nil {
		return err
	}
	if err := putReplacing(ctx, l, senders); err != nil {
		return err
	}
	return putReplacing(ctx, l, recipients)
}
