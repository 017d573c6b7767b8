package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// defaultRangeDays is the trailing window applied to transaction listings
// when the caller passes no explicit range.
const defaultRangeDays = 30

type dataResponse struct {
	Data any `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

// respondData wraps the payload in the API's {"data": ...} envelope.
func respondData(w http.ResponseWriter, status int, v any) {
	respondJSON(w, status, dataResponse{Data: v})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// idList wraps deleted ids in the same object shape single-delete responses use.
func idList(ids []string) []idResponse {
	out := make([]idResponse, 0, len(ids))
	for _, id := range ids {
		out = append(out, idResponse{ID: id})
	}
	return out
}

// requireUser resolves the acting user or writes a 401. Every resource
// handler calls this before touching the store.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return userID, true
}

// requireID reads the {id} path segment or writes a 400.
func requireID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "Missing id")
		return "", false
	}
	return id, true
}

// decodeBody parses the JSON request body into dst. On failure it writes a
// 400 and reports false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// parseTransactionFilter reads from/to/accountId query parameters. Absent
// bounds default to the trailing 30 days ending today, both inclusive.
func parseTransactionFilter(r *http.Request) (storage.TransactionFilter, error) {
	to := core.Today()
	from := to.AddDays(-defaultRangeDays)

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			return storage.TransactionFilter{}, err
		}
		from = parsed
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			return storage.TransactionFilter{}, err
		}
		to = parsed
	}

	return storage.TransactionFilter{
		From:      from,
		To:        to,
		AccountID: strings.TrimSpace(r.URL.Query().Get("accountId")),
	}, nil
}
