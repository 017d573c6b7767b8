package storage

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// AppendAuditLog writes one immutable audit record with a server-assigned
// timestamp and sequence id. There is no update or delete counterpart.
func (s *SQLiteStore) AppendAuditLog(ctx context.Context, userID, action string) (*core.AuditLog, error) {
	entry := core.AuditLog{
		UserID:    userID,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO audit_logs (user_id, action, timestamp) VALUES (?, ?, ?) RETURNING id`,
		entry.UserID, entry.Action, entry.Timestamp).
		Scan(&entry.ID)
	if err != nil {
		return nil, fmt.Errorf("append audit log: %w", err)
	}

	return &entry, nil
}

// ListAuditLogs returns every audit record, newest first. The audit trail is
// a global administrative view and is not scoped to one user.
func (s *SQLiteStore) ListAuditLogs(ctx context.Context) ([]core.AuditLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, action, timestamp FROM audit_logs
		 ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	logs := []core.AuditLog{}
	for rows.Next() {
		var entry core.AuditLog
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}

	return logs, nil
}
