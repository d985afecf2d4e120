package service

import (
	"context"
	"log/slog"

	catalogmetrics "delphi/internal/catalog/metrics"
	"delphi/internal/catalog/models"
	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
	"delphi/pkg/platform/audit"
	txcontext "delphi/pkg/platform/tx"
	"delphi/pkg/requestcontext"
)

type PropertyTypeStore interface {
	Append(ctx context.Context, pt *models.PropertyType) error
	ListByAuthority(ctx context.Context, authority id.AccountID) ([]models.PropertyType, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the property-type catalog and owns the authority index.
type Service struct {
	types          PropertyTypeStore
	tx             txcontext.Runner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *catalogmetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *catalogmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx sets the transaction boundary shared by the index write and its audit event.
func WithTx(runner txcontext.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

func New(types PropertyTypeStore, opts ...Option) *Service {
	s := &Service{types: types, tx: txcontext.InlineRunner{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterType appends a property type to the caller's authority entry.
// A type id the caller already owns is accepted again and logged as a duplicate.
func (s *Service) RegisterType(ctx context.Context, caller id.AccountID, typeID id.TypeID, requirements id.DocumentAddr) (*models.PropertyType, error) {
	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authenticated caller required")
	}
	pt, err := models.NewPropertyType(typeID, requirements, caller, requestcontext.Now(ctx))
	if err != nil {
		if de, ok := dErrors.From(err); ok && de.Code == dErrors.CodeInvariantViolation {
			return nil, dErrors.New(dErrors.CodeValidation, de.Message)
		}
		return nil, err
	}

	var duplicate bool
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.types.ListByAuthority(txCtx, caller)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authority index")
		}
		duplicate = models.Contains(existing, typeID)

		if err := s.types.Append(txCtx, pt); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register property type")
		}
		if s.auditPublisher != nil {
			if err := s.auditPublisher.Emit(txCtx, audit.Event{
				Action: audit.EventPropertyTypeRegistered,
				Actor:  caller,
				TypeID: typeID,
			}); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record property type event")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if duplicate {
		s.logger.WarnContext(ctx, "property type id registered again by the same authority",
			"caller", caller,
			"type_id", typeID,
			"duplicate", true,
			"request_id", requestcontext.RequestID(ctx),
		)
	} else {
		s.logger.InfoContext(ctx, "property type registered",
			"caller", caller,
			"type_id", typeID,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if s.metrics != nil {
		s.metrics.IncrementRegistered(duplicate)
	}
	return pt, nil
}

// ListTypes returns every type registered by authority, in registration order.
// An unknown authority yields an empty slice.
func (s *Service) ListTypes(ctx context.Context, authority id.AccountID) ([]models.PropertyType, error) {
	types, err := s.types.ListByAuthority(ctx, authority)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list property types")
	}
	if types == nil {
		types = []models.PropertyType{}
	}
	return types, nil
}

// OwnsType reports whether authority has an index entry at all, and whether
// that entry contains typeID.
func (s *Service) OwnsType(ctx context.Context, authority id.AccountID, typeID id.TypeID) (hasEntry bool, owns bool, err error) {
	types, err := s.types.ListByAuthority(ctx, authority)
	if err != nil {
		return false, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authority index")
	}
	return len(types) > 0, models.Contains(types, typeID), nil
}
