package http

import (
	"log/slog"
	"net/http"
)

// handleListAuditLogs serves the full action trail, newest first, as a bare
// array. The trail is a global administrative view and is not scoped to the
// requesting user.
func (s *Server) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.store.ListAuditLogs(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Audit log list error", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch audit logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}
