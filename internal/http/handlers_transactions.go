package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	filter, err := parseTransactionFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date")
		return
	}

	transactions, err := s.store.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list error", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, "Fetched transaction list")
	respondData(w, http.StatusOK, transactions)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	tx, err := s.store.GetTransaction(r.Context(), userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction get error", "error", err, "user_id", userID, "transaction_id", id)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, fmt.Sprintf("Fetched transaction details for ID: %s", id))
	respondData(w, http.StatusOK, tx)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req core.Transaction
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = ""
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tx, err := s.store.CreateTransaction(r.Context(), req)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction create error", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, "Created a new transaction")
	respondData(w, http.StatusOK, tx)
}

func (s *Server) handleBulkCreateTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req []core.Transaction
	if !decodeBody(w, r, &req) {
		return
	}
	for i := range req {
		req[i].ID = ""
		if err := req[i].Validate(); err != nil {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	created, err := s.store.BulkCreateTransactions(r.Context(), req)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction bulk create error", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, "Bulk created transactions")
	respondData(w, http.StatusOK, created)
}

func (s *Server) handleBulkDeleteTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req idsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	deleted, err := s.store.BulkDeleteTransactions(r.Context(), userID, req.IDs)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction bulk delete error", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID,
		fmt.Sprintf("Bulk deleted transactions with IDs: %s", strings.Join(req.IDs, ", ")))
	respondData(w, http.StatusOK, idList(deleted))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var params storage.UpdateTransactionParams
	if !decodeBody(w, r, &params) {
		return
	}
	if err := validateTransactionPatch(params); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tx, err := s.store.UpdateTransaction(r.Context(), userID, id, params)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction update error", "error", err, "user_id", userID, "transaction_id", id)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, fmt.Sprintf("Updated transaction with ID: %s", id))
	respondData(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	deleted, err := s.store.DeleteTransaction(r.Context(), userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction delete error", "error", err, "user_id", userID, "transaction_id", id)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, fmt.Sprintf("Deleted transaction with ID: %s", id))
	respondData(w, http.StatusOK, idResponse{ID: deleted})
}

// validateTransactionPatch checks the fields present on a patch; nil fields
// stay untouched and need no check.
func validateTransactionPatch(params storage.UpdateTransactionParams) error {
	if params.Date != nil {
		if err := params.Date.Validate(); err != nil {
			return err
		}
	}
	if params.Payee != nil && strings.TrimSpace(*params.Payee) == "" {
		return core.ErrEmptyPayee
	}
	if params.AccountID != nil && strings.TrimSpace(*params.AccountID) == "" {
		return core.ErrEmptyAccountID
	}
	return nil
}
