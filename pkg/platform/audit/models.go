package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "delphi/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: anything that
	// creates, moves or attests a title. Emission is fail-closed.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine catalog and directory activity.
	CategoryOperations EventCategory = "operations"
)

// Action names the mutation that produced an event.
type Action string

const (
	EventAccountCreated          Action = "account_created"
	EventPropertyTypeRegistered  Action = "property_type_registered"
	EventPropertyClaimRegistered Action = "property_claim_registered"
	EventPropertyTransferred     Action = "property_transferred"
	EventPropertyDocumentSigned  Action = "property_document_signed"
)

var eventCategories = map[Action]EventCategory{
	EventAccountCreated:          CategoryCompliance,
	EventPropertyClaimRegistered: CategoryCompliance,
	EventPropertyTransferred:     CategoryCompliance,
	EventPropertyDocumentSigned:  CategoryCompliance,
	EventPropertyTypeRegistered:  CategoryOperations,
}

// Category returns the EventCategory for this action.
// Unknown actions default to CategoryOperations.
func (a Action) Category() EventCategory {
	if cat, ok := eventCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is the notification emitted by every mutating ledger operation. It
// carries the operation's key identifiers and nothing about how it is delivered.
type Event struct {
	ID         uuid.UUID
	Category   EventCategory
	Timestamp  time.Time
	Action     Action
	Actor      id.AccountID // caller that performed the mutation
	Recipient  id.AccountID // transfer target, empty otherwise
	PropertyID id.PropertyID
	TypeID     id.TypeID
	Name       string // account display name for account_created
	RequestID  string
}

// Store persists audit events. Append must join the caller's transaction when
// the context carries one.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actor id.AccountID) ([]Event, error)
}
