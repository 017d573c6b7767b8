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

type nameRequest struct {
	Name string `json:"name"`
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

type idResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	accounts, err := s.store.ListAccounts(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Account list error", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, "Fetched account list")
	respondData(w, http.StatusOK, accounts)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	account, err := s.store.GetAccount(r.Context(), userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Account get error", "error", err, "user_id", userID, "account_id", id)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, fmt.Sprintf("Fetched account details for ID: %s", id))
	respondData(w, http.StatusOK, account)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := (core.Account{Name: req.Name}).Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	account, err := s.store.CreateAccount(r.Context(), userID, req.Name)
	if err != nil {
		slog.ErrorContext(r.Context(), "Account create error", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, "Created a new account")
	respondData(w, http.StatusOK, account)
}

func (s *Server) handleBulkDeleteAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req idsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	deleted, err := s.store.BulkDeleteAccounts(r.Context(), userID, req.IDs)
	if err != nil {
		slog.ErrorContext(r.Context(), "Account bulk delete error", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	// The trail keeps the requested ids, not the owned subset.
	s.recorder.Record(r.Context(), userID,
		fmt.Sprintf("Bulk deleted accounts with IDs: %s", strings.Join(req.IDs, ", ")))
	respondData(w, http.StatusOK, idList(deleted))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := (core.Account{Name: req.Name}).Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	account, err := s.store.UpdateAccount(r.Context(), userID, id, req.Name)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Account update error", "error", err, "user_id", userID, "account_id", id)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, fmt.Sprintf("Updated account with ID: %s", id))
	respondData(w, http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	deleted, err := s.store.DeleteAccount(r.Context(), userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Account delete error", "error", err, "user_id", userID, "account_id", id)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, fmt.Sprintf("Deleted account with ID: %s", id))
	respondData(w, http.StatusOK, idResponse{ID: deleted})
}
