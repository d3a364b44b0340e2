package amqp

import (
	"encoding/json"
	"time"

	"saldo/internal/core"
)

// TransactionEventMessage announces a committed transaction change. It
// carries the full row so consumers never need a read back against the
// remote backend.
type TransactionEventMessage struct {
	Action      string    `json:"action"`
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Date        string    `json:"date"`
	Description *string   `json:"description,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewTransactionEventMessage(action string, tx core.Transaction) *TransactionEventMessage {
	return &TransactionEventMessage{
		Action:      action,
		ID:          tx.ID,
		UserID:      tx.UserID,
		Date:        tx.Date.String(),
		Description: tx.Description,
		AmountCents: tx.Amount.Cents,
		Type:        string(tx.Type),
		Timestamp:   time.Now(),
	}
}

func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
