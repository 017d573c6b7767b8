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

// ListAccounts returns all accounts owned by the user. The owner column is
// not selected; list and get responses expose only id and name.
func (s *SQLiteStore) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM accounts WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []core.Account{}
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

// GetAccount returns one owned account or ErrNotFound.
func (s *SQLiteStore) GetAccount(ctx context.Context, userID, id string) (*core.Account, error) {
	var a core.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM accounts WHERE user_id = ? AND id = ?`, userID, id).
		Scan(&a.ID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

// CreateAccount inserts a new account owned by the user. The id is assigned
// here; the owner always comes from the authenticated caller.
func (s *SQLiteStore) CreateAccount(ctx context.Context, userID, name string) (*core.Account, error) {
	a := core.Account{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   name,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, name) VALUES (?, ?, ?)`,
		a.ID, a.UserID, a.Name)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account created",
		"account_id", a.ID,
		"user_id", a.UserID)

	return &a, nil
}

// UpdateAccount renames an owned account and returns the updated row, or
// ErrNotFound when no owned row matches. The owner column is never touched.
func (s *SQLiteStore) UpdateAccount(ctx context.Context, userID, id, name string) (*core.Account, error) {
	var a core.Account
	err := s.db.QueryRowContext(ctx,
		`UPDATE accounts SET name = ? WHERE user_id = ? AND id = ?
		 RETURNING id, user_id, name`,
		name, userID, id).
		Scan(&a.ID, &a.UserID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return &a, nil
}

// DeleteAccount removes an owned account and returns its id, or ErrNotFound.
func (s *SQLiteStore) DeleteAccount(ctx context.Context, userID, id string) (string, error) {
	var deletedID string
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM accounts WHERE user_id = ? AND id = ? RETURNING id`,
		userID, id).
		Scan(&deletedID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("delete account: %w", err)
	}
	return deletedID, nil
}

// BulkDeleteAccounts removes the owned subset of the requested ids and
// returns the ids actually deleted. Unowned or missing ids are ignored.
func (s *SQLiteStore) BulkDeleteAccounts(ctx context.Context, userID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	query := fmt.Sprintf(
		`DELETE FROM accounts WHERE user_id = ? AND id IN (%s) RETURNING id`,
		placeholders(len(ids)))

	rows, err := s.db.QueryContext(ctx, query, toAnySlice([]any{userID}, ids)...)
	if err != nil {
		return nil, fmt.Errorf("bulk delete accounts: %w", err)
	}
	defer rows.Close()

	deleted := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted account id: %w", err)
		}
		deleted = append(deleted, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted accounts: %w", err)
	}

	slog.InfoContext(ctx, "Accounts bulk deleted",
		"user_id", userID,
		"requested", len(ids),
		"deleted", len(deleted))

	return deleted, nil
}
