package amqp

import (
	"encoding/json"
	"time"
)

// AccountRefreshMessage asks the refresh worker to trigger upstream data
// collection for one account. Subscribe distinguishes first-time
// subscription from a routine refresh; both are safe to repeat.
type AccountRefreshMessage struct {
	AccountID string    `json:"account_id"`
	Features  []string  `json:"features"`
	Subscribe bool      `json:"subscribe"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAccountRefreshMessage creates a refresh message for an account.
func NewAccountRefreshMessage(accountID string, features []string, subscribe bool) *AccountRefreshMessage {
	return &AccountRefreshMessage{
		AccountID: accountID,
		Features:  features,
		Subscribe: subscribe,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *AccountRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AccountRefreshMessageFromJSON creates a message from JSON bytes.
func AccountRefreshMessageFromJSON(data []byte) (*AccountRefreshMessage, error) {
	var msg AccountRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
