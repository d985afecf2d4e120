package store

import (
	"context"
	"slices"
	"sync"

	"delphi/internal/catalog/models"
	id "delphi/pkg/domain"
)

// InMemoryPropertyTypeStore is the authority index: authority -> types in registration order.
type InMemoryPropertyTypeStore struct {
	mu          sync.RWMutex
	authorities map[id.AccountID][]models.PropertyType
}

func NewInMemoryPropertyTypeStore() *InMemoryPropertyTypeStore {
	return &InMemoryPropertyTypeStore{authorities: make(map[id.AccountID][]models.PropertyType)}
}

// Append adds pt to its authority's entry, creating the entry if absent.
func (s *InMemoryPropertyTypeStore) Append(_ context.Context, pt *models.PropertyType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authorities[pt.Authority] = append(s.authorities[pt.Authority], *pt)
	return nil
}

// ListByAuthority returns a copy of the authority's entry, nil when it has none.
func (s *InMemoryPropertyTypeStore) ListByAuthority(_ context.Context, authority id.AccountID) ([]models.PropertyType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.authorities[authority]), nil
}
