package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "delphi/pkg/domain"
	"delphi/pkg/platform/audit"
	"delphi/pkg/platform/audit/store/memory"
	"delphi/pkg/requestcontext"
)

func TestPublisher_EmitsAndLists(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	actor := id.AccountID("acct-alice")
	err := pub.Emit(context.Background(), audit.Event{
		Action:     audit.EventPropertyClaimRegistered,
		Actor:      actor,
		PropertyID: "lot-42",
		TypeID:     "residential",
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), actor)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventPropertyClaimRegistered, events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.NotEqual(t, "", events[0].ID.String())
}

func TestPublisher_FillsFromContext(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), fixed)
	ctx = requestcontext.WithRequestID(ctx, "req-123")

	require.NoError(t, pub.Emit(ctx, audit.Event{
		Action: audit.EventPropertyTypeRegistered,
		Actor:  "acct-lands-ministry",
		TypeID: "residential",
	}))

	events, err := pub.List(ctx, "acct-lands-ministry")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Equal(t, "req-123", events[0].RequestID)
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	custom := time.Date(2023, 6, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Action:    audit.EventAccountCreated,
		Actor:     "acct-alice",
		Name:      "Alice",
		Timestamp: custom,
	}))

	events, err := store.ListByActor(context.Background(), "acct-alice")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, custom, events[0].Timestamp)
}

func TestPublisher_RejectsIncompleteEvents(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore())

	err := pub.Emit(context.Background(), audit.Event{Actor: "acct-alice"})
	require.Error(t, err)

	err = pub.Emit(context.Background(), audit.Event{Action: audit.EventAccountCreated})
	require.Error(t, err)
}

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("disk full") }
func (failingStore) ListByActor(context.Context, id.AccountID) ([]audit.Event, error) {
	return nil, nil
}

func TestPublisher_FailClosed(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	pub := NewPublisher(failingStore{}, WithMetrics(m))

	err := pub.Emit(context.Background(), audit.Event{
		Action: audit.EventPropertyTransferred,
		Actor:  "acct-alice",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PersistFailures))
}
