package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"delphi/internal/provenance/models"
	"delphi/internal/provenance/ports"
	id "delphi/pkg/domain"
	"delphi/pkg/platform/sentinel"
	txcontext "delphi/pkg/platform/tx"
)

// PostgresLedger stores properties, their transfer history and the claim
// index in PostgreSQL. Writes made inside RunInTx share one sql.Tx, which
// audit stores join through the context.
type PostgresLedger struct {
	db     *sql.DB
	runner *txcontext.SQLRunner
}

func NewPostgres(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db, runner: txcontext.NewSQLRunner(db)}
}

func (s *PostgresLedger) RunInTx(ctx context.Context, fn func(ctx context.Context, ledger ports.Ledger) error) error {
	return s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		return fn(txCtx, s)
	})
}

// GetProperty locks the row when called inside a transaction.
func (s *PostgresLedger) GetProperty(ctx context.Context, propertyID id.PropertyID) (*models.Property, error) {
	query := `
		SELECT property_id, claimer, claim_addr, type_id, attested_at, attested_by
		FROM properties
		WHERE property_id = $1`
	if _, inTx := txcontext.From(ctx); inTx {
		query += ` FOR UPDATE`
	}
	exec := txcontext.ExecutorFrom(ctx, s.db)

	var (
		pid, claimer, claimAddr, typeID string
		attestedAt                      sql.NullTime
		attestedBy                      sql.NullString
	)
	err := exec.QueryRowContext(ctx, query, propertyID.String()).
		Scan(&pid, &claimer, &claimAddr, &typeID, &attestedAt, &attestedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find property: %w", err)
	}

	p := &models.Property{
		ID:        id.PropertyID(pid),
		Claimer:   id.AccountID(claimer),
		ClaimAddr: id.DocumentAddr(claimAddr),
		TypeID:    id.TypeID(typeID),
	}
	if attestedBy.Valid {
		p.Attestation = models.Attestation{
			AttestedAt: attestedAt.Time.UTC(),
			Authority:  id.AccountID(attestedBy.String),
		}
	}
	p.History, err = s.history(ctx, exec, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresLedger) history(ctx context.Context, exec txcontext.Executor, propertyID id.PropertyID) ([]models.TransferRecord, error) {
	const query = `
		SELECT prior_owner, transferred_at
		FROM property_transfers
		WHERE property_id = $1
		ORDER BY position`
	rows, err := exec.QueryContext(ctx, query, propertyID.String())
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	history := []models.TransferRecord{}
	for rows.Next() {
		var owner string
		var at time.Time
		if err := rows.Scan(&owner, &at); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		history = append(history, models.TransferRecord{PriorOwner: id.AccountID(owner), TransferredAt: at.UTC()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}
	return history, nil
}

func (s *PostgresLedger) ClaimIDs(ctx context.Context, typeID id.TypeID) ([]id.PropertyID, error) {
	const query = `
		SELECT property_id
		FROM claim_index
		WHERE type_id = $1
		ORDER BY seq`
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, query, typeID.String())
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	ids := []id.PropertyID{}
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		ids = append(ids, id.PropertyID(pid))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}
	return ids, nil
}

// PutProperty upserts the row and rewrites its transfer history.
func (s *PostgresLedger) PutProperty(ctx context.Context, p *models.Property) error {
	exec := txcontext.ExecutorFrom(ctx, s.db)

	var attestedAt sql.NullTime
	var attestedBy sql.NullString
	if p.Attestation.IsAttested() {
		attestedAt = sql.NullTime{Time: p.Attestation.AttestedAt, Valid: true}
		attestedBy = sql.NullString{String: p.Attestation.Authority.String(), Valid: true}
	}
	const upsert = `
		INSERT INTO properties (property_id, claimer, claim_addr, type_id, attested_at, attested_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (property_id) DO UPDATE SET
			claimer = EXCLUDED.claimer,
			claim_addr = EXCLUDED.claim_addr,
			type_id = EXCLUDED.type_id,
			attested_at = EXCLUDED.attested_at,
			attested_by = EXCLUDED.attested_by`
	if _, err := exec.ExecContext(ctx, upsert,
		p.ID.String(), p.Claimer.String(), p.ClaimAddr.String(), p.TypeID.String(), attestedAt, attestedBy); err != nil {
		return fmt.Errorf("upsert property: %w", err)
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM property_transfers WHERE property_id = $1`, p.ID.String()); err != nil {
		return fmt.Errorf("clear transfers: %w", err)
	}
	if len(p.History) == 0 {
		return nil
	}
	owners := make([]string, len(p.History))
	times := make([]string, len(p.History))
	for i, rec := range p.History {
		owners[i] = rec.PriorOwner.String()
		times[i] = rec.TransferredAt.UTC().Format(time.RFC3339Nano)
	}
	const insertHistory = `
		INSERT INTO property_transfers (property_id, position, prior_owner, transferred_at)
		SELECT $1, t.ord, t.owner, t.at
		FROM unnest($2::text[], $3::timestamptz[]) WITH ORDINALITY AS t(owner, at, ord)`
	if _, err := exec.ExecContext(ctx, insertHistory, p.ID.String(), pq.Array(owners), pq.Array(times)); err != nil {
		return fmt.Errorf("insert transfers: %w", err)
	}
	return nil
}

// DeleteProperty removes the row; its history cascades.
func (s *PostgresLedger) DeleteProperty(ctx context.Context, propertyID id.PropertyID) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx,
		`DELETE FROM properties WHERE property_id = $1`, propertyID.String())
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	return nil
}

func (s *PostgresLedger) AddClaims(ctx context.Context, typeID id.TypeID, propertyIDs ...id.PropertyID) error {
	if len(propertyIDs) == 0 {
		return nil
	}
	ids := make([]string, len(propertyIDs))
	for i, pid := range propertyIDs {
		ids[i] = pid.String()
	}
	const query = `
		INSERT INTO claim_index (type_id, property_id)
		SELECT $1, t.pid
		FROM unnest($2::text[]) WITH ORDINALITY AS t(pid, ord)
		ORDER BY t.ord
		ON CONFLICT (type_id, property_id) DO NOTHING`
	if _, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query, typeID.String(), pq.Array(ids)); err != nil {
		return fmt.Errorf("insert claims: %w", err)
	}
	return nil
}

func (s *PostgresLedger) RemoveClaim(ctx context.Context, typeID id.TypeID, propertyID id.PropertyID) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx,
		`DELETE FROM claim_index WHERE type_id = $1 AND property_id = $2`, typeID.String(), propertyID.String())
	if err != nil {
		return fmt.Errorf("delete claim: %w", err)
	}
	return nil
}
