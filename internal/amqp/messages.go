package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransactionSyncMessage asks the worker to mirror one stored transaction.
// It carries ids only; the worker loads the row from the ledger store.
type TransactionSyncMessage struct {
	MessageID     string    `json:"message_id"`
	TransactionID int64     `json:"transaction_id"`
	UserID        int64     `json:"user_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionSyncMessage creates a message with a fresh id.
func NewTransactionSyncMessage(transactionID, userID int64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		MessageID:     uuid.NewString(),
		TransactionID: transactionID,
		UserID:        userID,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSyncMessageFromJSON decodes and sanity checks a message body.
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.TransactionID <= 0 {
		return nil, fmt.Errorf("invalid transaction id %d", msg.TransactionID)
	}
	return &msg, nil
}
