package store

import (
	"context"
	"slices"
	"sync"

	"delphi/internal/provenance/models"
	"delphi/internal/provenance/ports"
	id "delphi/pkg/domain"
	"delphi/pkg/platform/sentinel"
)

// InMemoryLedger keeps the property table and claim index in maps.
// Transactions are serialized; writes are staged and applied on success.
type InMemoryLedger struct {
	mu         sync.RWMutex
	properties map[id.PropertyID]*models.Property
	claims     map[id.TypeID][]id.PropertyID
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		properties: make(map[id.PropertyID]*models.Property),
		claims:     make(map[id.TypeID][]id.PropertyID),
	}
}

func (s *InMemoryLedger) GetProperty(_ context.Context, propertyID id.PropertyID) (*models.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[propertyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *InMemoryLedger) ClaimIDs(_ context.Context, typeID id.TypeID) ([]id.PropertyID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := slices.Clone(s.claims[typeID])
	if ids == nil {
		ids = []id.PropertyID{}
	}
	return ids, nil
}

func (s *InMemoryLedger) RunInTx(ctx context.Context, fn func(ctx context.Context, ledger ports.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	stage := &stagedLedger{
		base:       s,
		properties: make(map[id.PropertyID]*models.Property),
		claims:     make(map[id.TypeID][]id.PropertyID),
	}
	if err := fn(ctx, stage); err != nil {
		return err
	}
	stage.apply()
	return nil
}

// stagedLedger overlays pending writes on the base maps. A nil property
// entry marks a deletion. The base lock is held by RunInTx for its lifetime.
type stagedLedger struct {
	base       *InMemoryLedger
	properties map[id.PropertyID]*models.Property
	claims     map[id.TypeID][]id.PropertyID
}

func (l *stagedLedger) GetProperty(_ context.Context, propertyID id.PropertyID) (*models.Property, error) {
	p, staged := l.properties[propertyID]
	if !staged {
		p = l.base.properties[propertyID]
	}
	if p == nil {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (l *stagedLedger) ClaimIDs(_ context.Context, typeID id.TypeID) ([]id.PropertyID, error) {
	ids := slices.Clone(l.entry(typeID))
	if ids == nil {
		ids = []id.PropertyID{}
	}
	return ids, nil
}

func (l *stagedLedger) PutProperty(_ context.Context, p *models.Property) error {
	l.properties[p.ID] = p.Clone()
	return nil
}

func (l *stagedLedger) DeleteProperty(_ context.Context, propertyID id.PropertyID) error {
	l.properties[propertyID] = nil
	return nil
}

func (l *stagedLedger) AddClaims(_ context.Context, typeID id.TypeID, propertyIDs ...id.PropertyID) error {
	entry := slices.Clone(l.entry(typeID))
	for _, pid := range propertyIDs {
		if !slices.Contains(entry, pid) {
			entry = append(entry, pid)
		}
	}
	l.claims[typeID] = entry
	return nil
}

func (l *stagedLedger) RemoveClaim(_ context.Context, typeID id.TypeID, propertyID id.PropertyID) error {
	entry := slices.DeleteFunc(slices.Clone(l.entry(typeID)), func(pid id.PropertyID) bool {
		return pid == propertyID
	})
	l.claims[typeID] = entry
	return nil
}

func (l *stagedLedger) entry(typeID id.TypeID) []id.PropertyID {
	if entry, staged := l.claims[typeID]; staged {
		return entry
	}
	return l.base.claims[typeID]
}

func (l *stagedLedger) apply() {
	for pid, p := range l.properties {
		if p == nil {
			delete(l.base.properties, pid)
			continue
		}
		l.base.properties[pid] = p
	}
	for typeID, entry := range l.claims {
		if len(entry) == 0 {
			delete(l.base.claims, typeID)
			continue
		}
		l.base.claims[typeID] = entry
	}
}
