package store

import (
	"context"
	"sync"

	"delphi/internal/account/models"
	id "delphi/pkg/domain"
	"delphi/pkg/platform/sentinel"
)

// InMemoryAccountStore keeps accounts in a map guarded by an RWMutex.
type InMemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[id.AccountID]models.Account
}

func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{accounts: make(map[id.AccountID]models.Account)}
}

// Save upserts the account.
func (s *InMemoryAccountStore) Save(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = *account
	return nil
}

func (s *InMemoryAccountStore) FindByID(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &acct, nil
}
