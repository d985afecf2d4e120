package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	accountmetrics "delphi/internal/account/metrics"
	"delphi/internal/account/models"
	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
	"delphi/pkg/platform/audit"
	"delphi/pkg/platform/sentinel"
	"delphi/pkg/requestcontext"
)

type AccountStore interface {
	Save(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the account directory.
type Service struct {
	accounts       AccountStore
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *accountmetrics.Metrics
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

func WithMetrics(m *accountmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(accounts AccountStore, opts ...Option) *Service {
	s := &Service{accounts: accounts, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register upserts the caller's account. Names are not unique and a repeat
// registration overwrites name, timestamp and authority flag.
// A zero timestamp means "now" for the request.
func (s *Service) Register(ctx context.Context, caller id.AccountID, name string, timestamp time.Time, authority bool) (*models.Account, error) {
	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authenticated caller required")
	}
	if timestamp.IsZero() {
		timestamp = requestcontext.Now(ctx)
	}

	account, err := models.NewAccount(caller, name, timestamp, authority)
	if err != nil {
		if de, ok := dErrors.From(err); ok && de.Code == dErrors.CodeInvariantViolation {
			return nil, dErrors.New(dErrors.CodeValidation, de.Message)
		}
		return nil, err
	}

	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save account")
	}

	if err := s.emit(ctx, audit.Event{
		Action: audit.EventAccountCreated,
		Actor:  caller,
		Name:   account.Name,
	}); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementRegistered()
	}
	s.logger.InfoContext(ctx, "account registered",
		"caller", caller,
		"authority", authority,
		"request_id", requestcontext.RequestID(ctx),
	)
	return account, nil
}

// Exists reports whether caller has an account. Absence is a normal result.
func (s *Service) Exists(ctx context.Context, caller id.AccountID) (bool, string, error) {
	account, err := s.Get(ctx, caller)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.recordLookup(false)
			return false, "", nil
		}
		return false, "", err
	}
	s.recordLookup(true)
	return true, account.Name, nil
}

// Get loads the account for caller, returning CodeNotFound when absent.
func (s *Service) Get(ctx context.Context, caller id.AccountID) (*models.Account, error) {
	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
	}
	account, err := s.accounts.FindByID(ctx, caller)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return account, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditPublisher == nil {
		return nil
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit account event",
			"action", event.Action,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record account event")
	}
	return nil
}

func (s *Service) recordLookup(found bool) {
	if s.metrics != nil {
		s.metrics.IncrementLookup(found)
	}
}
