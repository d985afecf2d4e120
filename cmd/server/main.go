package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	accounthandler "delphi/internal/account/handler"
	accountmetrics "delphi/internal/account/metrics"
	accountservice "delphi/internal/account/service"
	cataloghandler "delphi/internal/catalog/handler"
	catalogmetrics "delphi/internal/catalog/metrics"
	catalogservice "delphi/internal/catalog/service"
	jwttoken "delphi/internal/jwt_token"
	"delphi/internal/platform/config"
	"delphi/internal/platform/httpserver"
	"delphi/internal/platform/kafka"
	"delphi/internal/platform/logger"
	"delphi/internal/platform/metrics"
	provenancehandler "delphi/internal/provenance/handler"
	provenancemetrics "delphi/internal/provenance/metrics"
	provenanceservice "delphi/internal/provenance/service"
	queryhandler "delphi/internal/query/handler"
	queryservice "delphi/internal/query/service"
	ratelimitmetrics "delphi/internal/ratelimit/metrics"
	ratelimitmw "delphi/internal/ratelimit/middleware"
	ratelimitmodels "delphi/internal/ratelimit/models"
	"delphi/internal/ratelimit/store/bucket"
	httptransport "delphi/internal/transport/http"
	"delphi/pkg/platform/audit/publisher"
	"delphi/pkg/platform/audit/worker"
	authmw "delphi/pkg/platform/middleware/auth"
)

const bucketSweepInterval = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "delphi: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	auditor := publisher.NewPublisher(b.audit,
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics(reg)),
	)

	accounts := accountservice.New(b.accounts,
		accountservice.WithLogger(log),
		accountservice.WithAuditPublisher(auditor),
		accountservice.WithMetrics(accountmetrics.New(reg)),
	)
	catalog := catalogservice.New(b.types,
		catalogservice.WithLogger(log),
		catalogservice.WithAuditPublisher(auditor),
		catalogservice.WithMetrics(catalogmetrics.New(reg)),
		catalogservice.WithTx(b.typesTx),
	)
	provenance := provenanceservice.New(b.ledger, catalog,
		provenanceservice.WithLogger(log),
		provenanceservice.WithAuditPublisher(auditor),
		provenanceservice.WithMetrics(provenancemetrics.New(reg)),
		provenanceservice.WithStrictSignerAuthority(cfg.Server.StrictSignerAuthority),
	)
	query := queryservice.New(provenance, catalog, accounts, queryservice.WithLogger(log))

	var validator authmw.CallerValidator
	if cfg.Server.JWTSigningKey != "" {
		validator = jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.Server.JWTSigningKey, "delphi"))
	} else if !cfg.Server.TrustCallerHeader {
		log.Warn("no JWT signing key and caller header not trusted; every mutation will be rejected")
	}

	limiter := bucket.New(ratelimitmodels.Limit{RPS: cfg.RateLimit.RPS, Burst: cfg.RateLimit.Burst})
	router := httptransport.NewRouter(httptransport.Options{
		Logger:            log,
		Gatherer:          reg,
		HTTPMetrics:       metrics.New(reg),
		CallerValidator:   validator,
		TrustCallerHeader: cfg.Server.TrustCallerHeader,
		RateLimit: ratelimitmw.New(limiter, log,
			ratelimitmw.WithMetrics(ratelimitmetrics.New(reg)),
			ratelimitmw.WithDisabled(cfg.RateLimit.RPS <= 0),
		),
		HealthChecks: b.healthCheck,
	},
		accounthandler.New(accounts, log),
		cataloghandler.New(catalog, log, cfg.Server.StrictDocumentCIDs),
		provenancehandler.New(provenance, log, cfg.Server.StrictDocumentCIDs),
		queryhandler.New(query, log),
	)
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting delphi", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(bucketSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := limiter.Sweep(); n > 0 {
					log.Debug("swept idle rate limit buckets", "count", n)
				}
			}
		}
	})

	if err := startRelay(gctx, g, cfg, b, reg, log); err != nil {
		stop()
		_ = g.Wait()
		return err
	}

	return g.Wait()
}

// startRelay publishes the audit outbox to Kafka. It needs both brokers and
// the PostgreSQL outbox; otherwise notifications stay in the audit store.
func startRelay(ctx context.Context, g *errgroup.Group, cfg config.Config, b *backends, reg prometheus.Registerer, log *slog.Logger) error {
	producer, err := kafka.NewProducer(cfg.Kafka, log)
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	if producer == nil {
		return nil
	}
	if b.outbox == nil {
		log.Warn("kafka brokers configured without DATABASE_URL; outbox relay disabled")
		producer.Close()
		return nil
	}
	if err := producer.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.Replication); err != nil {
		producer.Close()
		return fmt.Errorf("ensure audit topic: %w", err)
	}

	relay := worker.NewOutboxWorker(b.outbox, producer,
		worker.WithInterval(cfg.Kafka.RelayInterval),
		worker.WithBatchSize(cfg.Kafka.RelayBatch),
		worker.WithLogger(log),
		worker.WithRegisterer(reg),
	)
	g.Go(func() error {
		defer producer.Close()
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("outbox relay: %w", err)
		}
		return nil
	})
	log.Info("outbox relay started", "topic", cfg.Kafka.AuditTopic)
	return nil
}
