// Package worker turns consumed audit events into spreadsheet rows.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// Appender is the export destination for audit records.
type Appender interface {
	AppendAuditEvent(ctx context.Context, entry core.AuditLog) error
}

// ExportWorker handles audit events from the queue and appends them to the
// export destination. Handler errors propagate to the consumer, which nacks
// and requeues the message.
type ExportWorker struct {
	appender Appender
}

func NewExportWorker(appender Appender) *ExportWorker {
	return &ExportWorker{appender: appender}
}

// HandleAuditEvent processes a single audit event message.
func (w *ExportWorker) HandleAuditEvent(ctx context.Context, msg *amqp.AuditEventMessage) error {
	slog.InfoContext(ctx, "Processing audit event",
		"audit_id", msg.ID,
		"user_id", msg.UserID)

	entry := core.AuditLog{
		ID:        msg.ID,
		UserID:    msg.UserID,
		Action:    msg.Action,
		Timestamp: msg.Timestamp,
	}

	if err := w.appender.AppendAuditEvent(ctx, entry); err != nil {
		return fmt.Errorf("export audit event %d: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Audit event exported",
		"audit_id", msg.ID,
		"action", msg.Action)
	return nil
}
