package store

import (
	"context"
	"database/sql"
	"fmt"

	"delphi/internal/catalog/models"
	id "delphi/pkg/domain"
	txcontext "delphi/pkg/platform/tx"
)

// PostgresPropertyTypeStore keeps the authority index in property_types,
// ordered by insertion sequence.
type PostgresPropertyTypeStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresPropertyTypeStore {
	return &PostgresPropertyTypeStore{db: db}
}

func (s *PostgresPropertyTypeStore) Append(ctx context.Context, pt *models.PropertyType) error {
	const query = `
		INSERT INTO property_types (type_id, requirements_addr, authority, registered_at)
		VALUES ($1, $2, $3, $4)`
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query,
		pt.ID.String(), pt.RequirementsAddr.String(), pt.Authority.String(), pt.RegisteredAt)
	if err != nil {
		return fmt.Errorf("insert property type: %w", err)
	}
	return nil
}

func (s *PostgresPropertyTypeStore) ListByAuthority(ctx context.Context, authority id.AccountID) ([]models.PropertyType, error) {
	const query = `
		SELECT type_id, requirements_addr, authority, registered_at
		FROM property_types
		WHERE authority = $1
		ORDER BY seq`
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, query, authority.String())
	if err != nil {
		return nil, fmt.Errorf("list property types: %w", err)
	}
	defer rows.Close()

	var types []models.PropertyType
	for rows.Next() {
		var typeID, addr, owner string
		var pt models.PropertyType
		if err := rows.Scan(&typeID, &addr, &owner, &pt.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan property type: %w", err)
		}
		pt.ID = id.TypeID(typeID)
		pt.RequirementsAddr = id.DocumentAddr(addr)
		pt.Authority = id.AccountID(owner)
		pt.RegisteredAt = pt.RegisteredAt.UTC()
		types = append(types, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate property types: %w", err)
	}
	return types, nil
}
