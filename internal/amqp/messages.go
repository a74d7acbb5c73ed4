package amqp

import (
	"encoding/json"
	"time"

	"ledger/internal/core"
)

// Event types published after a successful write.
const (
	EventCreated = "transaction.created"
	EventUpdated = "transaction.updated"
	EventDeleted = "transaction.deleted"
)

// TransactionEvent announces a change to one transaction. Deletes carry only
// the id.
type TransactionEvent struct {
	Type          string            `json:"type"`
	TransactionID int64             `json:"transaction_id"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// NewTransactionEvent builds a created or updated event for tx.
func NewTransactionEvent(eventType string, tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Type:          eventType,
		TransactionID: tx.ID,
		Transaction:   &tx,
		Timestamp:     time.Now(),
	}
}

// NewDeleteEvent builds a deleted event for id.
func NewDeleteEvent(id int64) *TransactionEvent {
	return &TransactionEvent{
		Type:          EventDeleted,
		TransactionID: id,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON decodes an event published by Client.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
