// Package audit implements the action trail: one immutable "who did what,
// when" record per successful operation. Recording is best-effort by
// contract; a failure here must never change the outcome of the request
// that triggered it.
package audit

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Appender durably stores one audit record.
type Appender interface {
	AppendAuditLog(ctx context.Context, userID, action string) (*core.AuditLog, error)
}

// Lister reads the full audit trail, newest first.
type Lister interface {
	ListAuditLogs(ctx context.Context) ([]core.AuditLog, error)
}

// Publisher forwards a stored audit record to external consumers.
type Publisher interface {
	PublishAuditEvent(ctx context.Context, entry core.AuditLog) error
}

// Recorder appends audit records and, when a publisher is configured,
// forwards each stored record as an event. Both steps swallow their own
// failures: callers invoke Record after the primary operation has already
// committed, and a missing log entry is tolerated while a failed request
// because of logging is not.
type Recorder struct {
	store     Appender
	publisher Publisher
}

func NewRecorder(store Appender, publisher Publisher) *Recorder {
	return &Recorder{
		store:     store,
		publisher: publisher,
	}
}

// Record appends one audit record for the actor. It never returns an error;
// storage failures are logged to the operational channel and discarded.
func (r *Recorder) Record(ctx context.Context, userID, action string) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentAudit)

	if userID == "" {
		logger.WarnContext(ctx, "Audit record skipped: empty actor",
			log.FieldAction, action)
		return
	}

	entry, err := r.store.AppendAuditLog(ctx, userID, action)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to record audit action",
			log.FieldError, err,
			log.FieldUserID, userID,
			log.FieldAction, action)
		return
	}

	logger.DebugContext(ctx, "Audit action recorded",
		log.FieldAuditID, entry.ID,
		log.FieldUserID, entry.UserID,
		log.FieldAction, entry.Action)

	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishAuditEvent(ctx, *entry); err != nil {
		logger.ErrorContext(ctx, "Failed to publish audit event",
			log.FieldError, err,
			log.FieldAuditID, entry.ID)
	}
}
