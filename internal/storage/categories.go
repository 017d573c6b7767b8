package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// ListCategories returns all categories owned by the user.
func (s *SQLiteStore) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM categories WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// GetCategory returns one owned category or ErrNotFound.
func (s *SQLiteStore) GetCategory(ctx context.Context, userID, id string) (*core.Category, error) {
	var c core.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE user_id = ? AND id = ?`, userID, id).
		Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// CreateCategory inserts a new category owned by the user.
func (s *SQLiteStore) CreateCategory(ctx context.Context, userID, name string) (*core.Category, error) {
	c := core.Category{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   name,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name) VALUES (?, ?, ?)`,
		c.ID, c.UserID, c.Name)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		"category_id", c.ID,
		"user_id", c.UserID)

	return &c, nil
}

// UpdateCategory renames an owned category, or returns ErrNotFound.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, userID, id, name string) (*core.Category, error) {
	var c core.Category
	err := s.db.QueryRowContext(ctx,
		`UPDATE categories SET name = ? WHERE user_id = ? AND id = ?
		 RETURNING id, user_id, name`,
		name, userID, id).
		Scan(&c.ID, &c.UserID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &c, nil
}

// DeleteCategory removes an owned category and returns its id, or ErrNotFound.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, userID, id string) (string, error) {
	var deletedID string
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM categories WHERE user_id = ? AND id = ? RETURNING id`,
		userID, id).
		Scan(&deletedID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("delete category: %w", err)
	}
	return deletedID, nil
}

// BulkDeleteCategories removes the owned subset of the requested ids and
// returns the ids actually deleted.
func (s *SQLiteStore) BulkDeleteCategories(ctx context.Context, userID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	query := fmt.Sprintf(
		`DELETE FROM categories WHERE user_id = ? AND id IN (%s) RETURNING id`,
		placeholders(len(ids)))

	rows, err := s.db.QueryContext(ctx, query, toAnySlice([]any{userID}, ids)...)
	if err != nil {
		return nil, fmt.Errorf("bulk delete categories: %w", err)
	}
	defer rows.Close()

	deleted := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted category id: %w", err)
		}
		deleted = append(deleted, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted categories: %w", err)
	}

	slog.InfoContext(ctx, "Categories bulk deleted",
		"user_id", userID,
		"requested", len(ids),
		"deleted", len(deleted))

	return deleted, nil
}
