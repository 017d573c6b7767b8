package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/core"
)

// AuditEventMessage mirrors a stored audit record on the wire. Consumers
// (the export worker) receive the full record and never read the database.
type AuditEventMessage struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAuditEventMessage converts a stored audit record to its wire form.
func NewAuditEventMessage(entry core.AuditLog) *AuditEventMessage {
	return &AuditEventMessage{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Action:    entry.Action,
		Timestamp: entry.Timestamp,
	}
}

// ToJSON converts the message to JSON bytes.
func (m *AuditEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AuditEventMessageFromJSON creates a message from JSON bytes.
func AuditEventMessageFromJSON(data []byte) (*AuditEventMessage, error) {
	var msg AuditEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
