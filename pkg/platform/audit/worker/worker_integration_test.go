//go:build integration

package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	id "delphi/pkg/domain"
	"delphi/pkg/platform/audit"
	"delphi/pkg/platform/audit/store/postgres"
	"delphi/pkg/platform/audit/worker"
	txcontext "delphi/pkg/platform/tx"
	"delphi/pkg/testutil/containers"
)

type recordingProducer struct {
	mu   sync.Mutex
	keys []string
	msgs []postgres.Payload
	fail error
}

func (p *recordingProducer) Publish(_ context.Context, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	var payload postgres.Payload
	if err := json.Unmarshal(value, &payload); err != nil {
		return err
	}
	p.keys = append(p.keys, string(key))
	p.msgs = append(p.msgs, payload)
	return nil
}

type OutboxWorkerSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestOutboxWorkerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(OutboxWorkerSuite))
}

func (s *OutboxWorkerSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = postgres.New(s.postgres.DB)
}

func (s *OutboxWorkerSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "outbox"))
}

func (s *OutboxWorkerSuite) appendEvent(ctx context.Context, action audit.Action, property string) {
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Category:   action.Category(),
		Timestamp:  time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		Action:     action,
		Actor:      "acct-alice",
		PropertyID: id.PropertyID(property),
	}))
}

func (s *OutboxWorkerSuite) TestRelayPublishesPendingOnce() {
	ctx := context.Background()
	s.appendEvent(ctx, audit.EventPropertyClaimRegistered, "prop-1")
	s.appendEvent(ctx, audit.EventPropertyTransferred, "prop-1")

	producer := &recordingProducer{}
	reg := prometheus.NewRegistry()
	w := worker.NewOutboxWorker(s.store, producer, worker.WithRegisterer(reg))

	n, err := w.RelayBatch(ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
	s.Equal([]string{"prop-1", "prop-1"}, producer.keys)
	s.Equal("property_claim_registered", producer.msgs[0].Action)
	s.Equal("property_transferred", producer.msgs[1].Action)

	n, err = w.RelayBatch(ctx)
	s.Require().NoError(err)
	s.Zero(n)
	s.Len(producer.msgs, 2)

	count, err := testutil.GatherAndCount(reg, "delphi_outbox_published_total")
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *OutboxWorkerSuite) TestFailedPublishLeavesRowsPending() {
	ctx := context.Background()
	s.appendEvent(ctx, audit.EventPropertyDocumentSigned, "prop-2")

	failing := &recordingProducer{fail: errors.New("broker down")}
	_, err := worker.NewOutboxWorker(s.store, failing).RelayBatch(ctx)
	s.Require().Error(err)

	producer := &recordingProducer{}
	n, err := worker.NewOutboxWorker(s.store, producer).RelayBatch(ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *OutboxWorkerSuite) TestRolledBackAppendIsNeverRelayed() {
	ctx := context.Background()
	errAbort := errors.New("abort")
	err := txcontext.Run(ctx, s.postgres.DB, func(ctx context.Context) error {
		s.appendEvent(ctx, audit.EventPropertyClaimRegistered, "prop-3")
		return errAbort
	})
	s.Require().ErrorIs(err, errAbort)

	producer := &recordingProducer{}
	n, err := worker.NewOutboxWorker(s.store, producer).RelayBatch(ctx)
	s.Require().NoError(err)
	s.Zero(n)

	events, err := s.store.ListByActor(ctx, "acct-alice")
	s.Require().NoError(err)
	s.Empty(events)
}
