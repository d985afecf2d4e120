package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"delphi/pkg/platform/audit/store/postgres"
	txcontext "delphi/pkg/platform/tx"
)

// Producer delivers one message to the notification transport.
type Producer interface {
	Publish(ctx context.Context, key, value []byte) error
}

// OutboxWorker relays committed outbox rows to the notification transport.
// Rows are locked, published, and stamped in one transaction, so a crash
// between publish and commit re-delivers rather than loses an event.
type OutboxWorker struct {
	store     *postgres.Store
	producer  Producer
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	published prometheus.Counter
	failures  prometheus.Counter
}

// Option configures the worker.
type Option func(*OutboxWorker)

func WithInterval(d time.Duration) Option {
	return func(w *OutboxWorker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *OutboxWorker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *OutboxWorker) {
		w.logger = logger
	}
}

// WithRegisterer registers relay counters with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(w *OutboxWorker) {
		factory := promauto.With(reg)
		w.published = factory.NewCounter(prometheus.CounterOpts{
			Name: "delphi_outbox_published_total",
			Help: "Total number of outbox events relayed to the notification transport",
		})
		w.failures = factory.NewCounter(prometheus.CounterOpts{
			Name: "delphi_outbox_publish_failures_total",
			Help: "Total number of outbox relay batches that failed",
		})
	}
}

func NewOutboxWorker(store *postgres.Store, producer Producer, opts ...Option) *OutboxWorker {
	w := &OutboxWorker{
		store:     store,
		producer:  producer,
		logger:    slog.Default(),
		interval:  time.Second,
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run relays batches until ctx is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := w.RelayBatch(ctx)
			if err != nil {
				if w.failures != nil {
					w.failures.Inc()
				}
				w.logger.ErrorContext(ctx, "outbox relay failed", "error", err)
				continue
			}
			if n > 0 {
				w.logger.DebugContext(ctx, "outbox relayed", "count", n)
			}
		}
	}
}

// RelayBatch publishes one batch of pending rows and returns how many were relayed.
func (w *OutboxWorker) RelayBatch(ctx context.Context) (int, error) {
	relayed := 0
	err := txcontext.Run(ctx, w.store.DB(), func(ctx context.Context) error {
		entries, err := w.store.ClaimPending(ctx, w.batchSize)
		if err != nil {
			return err
		}
		now := time.Now()
		for _, e := range entries {
			if err := w.producer.Publish(ctx, []byte(e.AggregateID), e.Payload); err != nil {
				return err
			}
			if err := w.store.MarkPublished(ctx, e.ID, now); err != nil {
				return err
			}
			relayed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if w.published != nil {
		w.published.Add(float64(relayed))
	}
	return relayed, nil
}
