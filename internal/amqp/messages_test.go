package amqp

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestNewAuditEventMessage(t *testing.T) {
	entry := core.AuditLog{
		ID:        42,
		UserID:    "user_1",
		Action:    "Created a new account",
		Timestamp: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	msg := NewAuditEventMessage(entry)

	if msg.ID != entry.ID {
		t.Errorf("NewAuditEventMessage() ID = %v, want %v", msg.ID, entry.ID)
	}
	if msg.UserID != entry.UserID {
		t.Errorf("NewAuditEventMessage() UserID = %v, want %v", msg.UserID, entry.UserID)
	}
	if msg.Action != entry.Action {
		t.Errorf("NewAuditEventMessage() Action = %v, want %v", msg.Action, entry.Action)
	}
	if !msg.Timestamp.Equal(entry.Timestamp) {
		t.Errorf("NewAuditEventMessage() Timestamp = %v, want %v", msg.Timestamp, entry.Timestamp)
	}
}

func TestAuditEventMessage_JSON(t *testing.T) {
	msg := &AuditEventMessage{
		ID:        7,
		UserID:    "user_2",
		Action:    "Bulk deleted accounts with IDs: a, b",
		Timestamp: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := AuditEventMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("AuditEventMessageFromJSON() error = %v", err)
	}

	if parsed.ID != msg.ID || parsed.UserID != msg.UserID || parsed.Action != msg.Action {
		t.Errorf("round trip mismatch: %+v != %+v", parsed, msg)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestAuditEventMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"id": "not_a_number"}`)

	if _, err := AuditEventMessageFromJSON(invalidJSON); err == nil {
		t.Error("AuditEventMessageFromJSON() should fail with invalid JSON")
	}
}
