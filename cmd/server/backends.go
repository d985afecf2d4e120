package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	accountservice "delphi/internal/account/service"
	accountstore "delphi/internal/account/store"
	catalogservice "delphi/internal/catalog/service"
	catalogstore "delphi/internal/catalog/store"
	"delphi/internal/platform/config"
	"delphi/internal/platform/postgres"
	"delphi/internal/platform/redis"
	"delphi/internal/provenance/ports"
	provenancestore "delphi/internal/provenance/store"
	httptransport "delphi/internal/transport/http"
	"delphi/pkg/platform/audit"
	auditmemory "delphi/pkg/platform/audit/store/memory"
	auditpostgres "delphi/pkg/platform/audit/store/postgres"
	txcontext "delphi/pkg/platform/tx"
)

// backends holds the stores selected by configuration. Without DATABASE_URL
// the ledger, catalog and audit trail live in memory; without REDIS_URL so
// does the account directory.
type backends struct {
	db          *sql.DB
	redis       *redis.Client
	ledger      ports.LedgerStore
	types       catalogservice.PropertyTypeStore
	typesTx     txcontext.Runner
	accounts    accountservice.AccountStore
	audit       audit.Store
	outbox      *auditpostgres.Store
	healthCheck map[string]httptransport.HealthCheck
}

func openBackends(ctx context.Context, cfg config.Config, log *slog.Logger) (*backends, error) {
	b := &backends{healthCheck: map[string]httptransport.HealthCheck{}}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if db != nil {
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		b.db = db
		b.ledger = provenancestore.NewPostgres(db)
		b.types = catalogstore.NewPostgres(db)
		b.typesTx = txcontext.NewSQLRunner(db)
		b.outbox = auditpostgres.New(db)
		b.audit = b.outbox
		b.healthCheck["postgres"] = db.PingContext
		log.Info("ledger backend selected", "backend", "postgres")
	} else {
		b.ledger = provenancestore.NewInMemoryLedger()
		b.types = catalogstore.NewInMemoryPropertyTypeStore()
		b.typesTx = txcontext.InlineRunner{}
		b.audit = auditmemory.NewInMemoryStore()
		log.Info("ledger backend selected", "backend", "memory")
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		b.close()
		return nil, fmt.Errorf("open redis: %w", err)
	}
	if client != nil {
		b.redis = client
		b.accounts = accountstore.NewRedisAccountStore(client.Client)
		b.healthCheck["redis"] = client.Health
		log.Info("account directory backend selected", "backend", "redis")
	} else {
		b.accounts = accountstore.NewInMemoryAccountStore()
		log.Info("account directory backend selected", "backend", "memory")
	}
	return b, nil
}

func (b *backends) close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}
