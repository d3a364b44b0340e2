package amqp

import (
	"testing"
	"time"

	"saldo/internal/core"
)

func TestNewTransactionEventMessage(t *testing.T) {
	desc := "spesa settimanale"
	tx := core.Transaction{
		ID:          "tx-1",
		UserID:      "u1",
		Date:        core.NewDate(2024, 3, 1),
		Description: &desc,
		Amount:      core.Money{Cents: 4550},
		Type:        core.Expense,
		CreatedAt:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	msg := NewTransactionEventMessage("create", tx)

	if msg.Action != "create" || msg.ID != "tx-1" || msg.UserID != "u1" {
		t.Errorf("message = %+v", msg)
	}
	if msg.Date != "2024-03-01" {
		t.Errorf("date = %q, want 2024-03-01", msg.Date)
	}
	if msg.AmountCents != 4550 || msg.Type != "expense" {
		t.Errorf("amount/type = %d/%s", msg.AmountCents, msg.Type)
	}
	if msg.Description == nil || *msg.Description != desc {
		t.Errorf("description = %v", msg.Description)
	}
	if msg.Timestamp.IsZero() || time.Since(msg.Timestamp) > time.Second {
		t.Errorf("timestamp = %v, want the publish time", msg.Timestamp)
	}
}

func TestTransactionEventMessageJSON(t *testing.T) {
	msg := &TransactionEventMessage{
		Action:      "update",
		ID:          "tx-2",
		UserID:      "u1",
		Date:        "2024-03-02",
		AmountCents: 120000,
		Type:        "income",
		Timestamp:   time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC),
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := TransactionEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("TransactionEventMessageFromJSON() error = %v", err)
	}

	if parsed.Action != msg.Action || parsed.ID != msg.ID || parsed.UserID != msg.UserID {
		t.Errorf("parsed = %+v, want %+v", parsed, msg)
	}
	if parsed.Date != msg.Date || parsed.AmountCents != msg.AmountCents || parsed.Type != msg.Type {
		t.Errorf("parsed = %+v, want %+v", parsed, msg)
	}
	if parsed.Description != nil {
		t.Errorf("description = %v, want the omitted field back as nil", parsed.Description)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestTransactionEventMessageInvalidJSON(t *testing.T) {
	invalid := []byte(`{"amount_cents": "not_a_number", "action": "create"}`)

	if _, err := TransactionEventMessageFromJSON(invalid); err == nil {
		t.Error("TransactionEventMessageFromJSON() should fail with invalid JSON")
	}
}
