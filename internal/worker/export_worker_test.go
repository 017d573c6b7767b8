package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

type fakeAppender struct {
	appended []core.AuditLog
	err      error
}

func (f *fakeAppender) AppendAuditEvent(ctx context.Context, entry core.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, entry)
	return nil
}

func TestHandleAuditEventAppendsRecord(t *testing.T) {
	appender := &fakeAppender{}
	w := NewExportWorker(appender)

	now := time.Now().UTC()
	msg := &amqp.AuditEventMessage{
		ID:        42,
		UserID:    "user_1",
		Action:    "Created a new account",
		Timestamp: now,
	}

	if err := w.HandleAuditEvent(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(appender.appended) != 1 {
		t.Fatalf("appended=%d, want 1", len(appender.appended))
	}
	got := appender.appended[0]
	if got.ID != 42 || got.UserID != "user_1" || got.Action != "Created a new account" || !got.Timestamp.Equal(now) {
		t.Fatalf("appended entry=%+v", got)
	}
}

func TestHandleAuditEventPropagatesAppendFailure(t *testing.T) {
	appender := &fakeAppender{err: errors.New("sheet unavailable")}
	w := NewExportWorker(appender)

	err := w.HandleAuditEvent(context.Background(), &amqp.AuditEventMessage{ID: 7, UserID: "user_1"})
	if err == nil {
		t.Fatal("expected error so the message is requeued")
	}
}
