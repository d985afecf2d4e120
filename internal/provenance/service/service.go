// Package service implements the claim registry and the provenance and
// transfer engine. Every mutation runs inside one ledger transaction that
// also carries its audit event.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	provenancemetrics "delphi/internal/provenance/metrics"
	"delphi/internal/provenance/models"
	"delphi/internal/provenance/ports"
	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
	"delphi/pkg/platform/audit"
	"delphi/pkg/platform/sentinel"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// TypeAuthority answers whether an account may attest claims of a type.
type TypeAuthority interface {
	OwnsType(ctx context.Context, authority id.AccountID, typeID id.TypeID) (hasEntry bool, owns bool, err error)
}

type Service struct {
	ledger         ports.LedgerStore
	authority      TypeAuthority
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *provenancemetrics.Metrics
	tracer         trace.Tracer
	strictSigners  bool
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

func WithMetrics(m *provenancemetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithStrictSignerAuthority rejects signatures from callers that have never
// registered a property type.
func WithStrictSignerAuthority(strict bool) Option {
	return func(s *Service) {
		s.strictSigners = strict
	}
}

func New(ledger ports.LedgerStore, authority TypeAuthority, opts ...Option) *Service {
	s := &Service{
		ledger:    ledger,
		authority: authority,
		logger:    slog.Default(),
		tracer:    otel.Tracer("delphi/provenance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetProperty returns the record at propertyID or a CodeNotFound error.
func (s *Service) GetProperty(ctx context.Context, propertyID id.PropertyID) (*models.Property, error) {
	p, err := s.ledger.GetProperty(ctx, propertyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "property not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load property")
	}
	return p, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditPublisher == nil {
		return nil
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record ledger event")
	}
	return nil
}

// putReplacing writes p and keeps the claim index consistent when p
// overwrites a record that was indexed under another type.
func putReplacing(ctx context.Context, l ports.Ledger, p *models.Property) error {
	prior, err := l.GetProperty(ctx, p.ID)
	switch {
	case err == nil:
		if prior.TypeID != p.TypeID {
			if err := l.RemoveClaim(ctx, prior.TypeID, p.ID); err != nil {
				return err
			}
		}
	case !errors.Is(err, sentinel.ErrNotFound):
		return err
	}
	return l.PutProperty(ctx, p)
}

// ledgerError wraps store failures that are not already coded.
func ledgerError(err error, message string) error {
	if _, ok := dErrors.From(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}
