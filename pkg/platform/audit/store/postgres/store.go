package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "delphi/pkg/domain"
	"delphi/pkg/platform/audit"
	txcontext "delphi/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table inside the caller's transaction and
// later published to Kafka by the outbox worker.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Payload is the JSON document stored in the outbox and published to Kafka.
type Payload struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Timestamp  string `json:"timestamp"`
	Action     string `json:"action"`
	Actor      string `json:"actor"`
	Recipient  string `json:"recipient,omitempty"`
	PropertyID string `json:"property_id,omitempty"`
	TypeID     string `json:"type_id,omitempty"`
	Name       string `json:"name,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

func toPayload(event audit.Event) Payload {
	return Payload{
		ID:         event.ID.String(),
		Category:   string(event.Category),
		Timestamp:  event.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:     string(event.Action),
		Actor:      event.Actor.String(),
		Recipient:  event.Recipient.String(),
		PropertyID: event.PropertyID.String(),
		TypeID:     event.TypeID.String(),
		Name:       event.Name,
		RequestID:  event.RequestID,
	}
}

func fromPayload(p Payload) (audit.Event, error) {
	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return audit.Event{}, fmt.Errorf("parse audit timestamp: %w", err)
	}
	eventID, err := uuid.Parse(p.ID)
	if err != nil {
		return audit.Event{}, fmt.Errorf("parse audit id: %w", err)
	}
	return audit.Event{
		ID:         eventID,
		Category:   audit.EventCategory(p.Category),
		Timestamp:  ts,
		Action:     audit.Action(p.Action),
		Actor:      id.AccountID(p.Actor),
		Recipient:  id.AccountID(p.Recipient),
		PropertyID: id.PropertyID(p.PropertyID),
		TypeID:     id.TypeID(p.TypeID),
		Name:       p.Name,
		RequestID:  p.RequestID,
	}, nil
}

// aggregateFor keys outbox rows so one property's events stay ordered on a
// single Kafka partition.
func aggregateFor(event audit.Event) (string, string) {
	switch {
	case !event.PropertyID.IsNil():
		return "property", event.PropertyID.String()
	case !event.TypeID.IsNil():
		return "property_type", event.TypeID.String()
	default:
		return "account", event.Actor.String()
	}
}

// Append writes an audit event to the outbox table.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	payloadBytes, err := json.Marshal(toPayload(event))
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	aggregateType, aggregateID := aggregateFor(event)

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query,
		event.ID,
		aggregateType,
		aggregateID,
		string(event.Action),
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListByActor returns the events performed by actor, oldest first.
func (s *Store) ListByActor(ctx context.Context, actor id.AccountID) ([]audit.Event, error) {
	query := `
		SELECT payload
		FROM outbox
		WHERE payload->>'actor' = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, actor.String())
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		var p Payload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("unmarshal audit payload: %w", err)
		}
		event, err := fromPayload(p)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// OutboxEntry is an unpublished outbox row.
type OutboxEntry struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Payload     []byte
}

// ClaimPending locks up to limit unpublished rows for the current transaction.
// Must be called inside txcontext.Run so the lock lasts until MarkPublished.
func (s *Store) ClaimPending(ctx context.Context, limit int) ([]OutboxEntry, error) {
	query := `
		SELECT id, aggregate_id, event_type, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending outbox: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox entries: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps an outbox row as delivered.
func (s *Store) MarkPublished(ctx context.Context, entryID uuid.UUID, at time.Time) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx,
		`UPDATE outbox SET published_at = $2 WHERE id = $1`, entryID, at)
	if err != nil {
		return fmt.Errorf("mark outbox entry published: %w", err)
	}
	return nil
}

// DB exposes the underlying pool for transaction boundaries.
func (s *Store) DB() *sql.DB {
	return s.db
}
