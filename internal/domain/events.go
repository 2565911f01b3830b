package domain

import "time"

// EntityKind names a record collection that clients can subscribe to.
type EntityKind string

const (
	KindAccounts     EntityKind = "accounts"
	KindTransactions EntityKind = "transactions"
	KindStocks       EntityKind = "stocks"
)

// Event types
const (
	EventTypeAccountCreated     = "account.created"
	EventTypeAccountReplaced    = "account.replaced"
	EventTypeAccountDeleted     = "account.deleted"
	EventTypeBalanceChanged     = "account.balance_changed"
	EventTypeTransactionCreated = "transaction.created"
	EventTypeTransactionDeleted = "transaction.deleted"
	EventTypeStockCreated       = "stock.created"
	EventTypeStockReplaced      = "stock.replaced"
	EventTypeStockDeleted       = "stock.deleted"
	EventTypeStockPriceChanged  = "stock.price_changed"
	EventTypeLedgerSeeded       = "ledger.seeded"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType EntityKind
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// ChangeEvent is the message pushed to a user's change feed after a commit.
type ChangeEvent struct {
	UserID   string     `json:"user_id"`
	Kind     EntityKind `json:"kind"`
	Type     string     `json:"type"`
	RecordID string     `json:"record_id"`
	EventAt  time.Time  `json:"event_at"`
}

// NewOutboxEvent builds an unpublished change event for a record of kind.
func NewOutboxEvent(id, userID string, kind EntityKind, eventType, recordID string, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   recordID,
		AggregateType: kind,
		EventType:     eventType,
		Payload: map[string]any{
			"user_id":   userID,
			"record_id": recordID,
		},
		CreatedAt: at,
	}
}

// ChangeEvent converts an outbox event into its feed message.
func (e *OutboxEvent) ChangeEvent() ChangeEvent {
	userID, _ := e.Payload["user_id"].(string)
	return ChangeEvent{
		UserID:   userID,
		Kind:     e.AggregateType,
		Type:     e.EventType,
		RecordID: e.AggregateID,
		EventAt:  e.CreatedAt,
	}
}
