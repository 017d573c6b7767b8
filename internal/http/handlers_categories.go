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

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	categories, err := s.store.ListCategories(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category list error", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, "Fetched category list")
	respondData(w, http.StatusOK, categories)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	category, err := s.store.GetCategory(r.Context(), userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Category get error", "error", err, "user_id", userID, "category_id", id)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, fmt.Sprintf("Fetched category details for ID: %s", id))
	respondData(w, http.StatusOK, category)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := (core.Category{Name: req.Name}).Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	category, err := s.store.CreateCategory(r.Context(), userID, req.Name)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category create error", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, "Created a new category")
	respondData(w, http.StatusOK, category)
}

func (s *Server) handleBulkDeleteCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req idsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	deleted, err := s.store.BulkDeleteCategories(r.Context(), userID, req.IDs)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category bulk delete error", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID,
		fmt.Sprintf("Bulk deleted categories with IDs: %s", strings.Join(req.IDs, ", ")))
	respondData(w, http.StatusOK, idList(deleted))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
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
	if err := (core.Category{Name: req.Name}).Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	category, err := s.store.UpdateCategory(r.Context(), userID, id, req.Name)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Category update error", "error", err, "user_id", userID, "category_id", id)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, fmt.Sprintf("Updated category with ID: %s", id))
	respondData(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	deleted, err := s.store.DeleteCategory(r.Context(), userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Category delete error", "error", err, "user_id", userID, "category_id", id)
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.recorder.Record(r.Context(), userID, fmt.Sprintf("Deleted category with ID: %s", id))
	respondData(w, http.StatusOK, idResponse{ID: deleted})
}
