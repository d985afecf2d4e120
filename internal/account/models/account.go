package models

import (
	"strings"
	"time"

	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
)

// MaxNameLength bounds display names in bytes.
const MaxNameLength = 256

// Account is a directory entry keyed by the caller's account id.
type Account struct {
	ID          id.AccountID
	Name        string
	IsAuthority bool
	CreatedAt   time.Time
}

// NewAccount validates and builds an Account.
func NewAccount(accountID id.AccountID, name string, createdAt time.Time, authority bool) (*Account, error) {
	if accountID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account name is required")
	}
	if len(name) > MaxNameLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account name must be at most 256 bytes")
	}
	if createdAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account timestamp is required")
	}
	return &Account{
		ID:          accountID,
		Name:        name,
		IsAuthority: authority,
		CreatedAt:   createdAt.UTC(),
	}, nil
}
