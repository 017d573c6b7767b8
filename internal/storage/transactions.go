package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// TransactionFilter narrows a transaction listing. From and To are inclusive.
type TransactionFilter struct {
	From      core.Date
	To        core.Date
	AccountID string
}

// UpdateTransactionParams carries patch-style field updates. Nil fields are
// left unchanged.
type UpdateTransactionParams struct {
	Date       *core.Date
	Payee      *string
	Amount     *core.Money
	Notes      *string
	AccountID  *string
	CategoryID *string
}

func nullToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// ListTransactions returns the user's transactions within the filter range,
// joined with account and category names, newest first. Ownership is
// enforced by the inner join on the user's accounts.
func (s *SQLiteStore) ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]core.TransactionDetail, error) {
	query := `SELECT t.id, t.date, c.name, t.category_id, t.payee, t.amount_cents, t.notes, a.name, t.account_id
		FROM transactions t
		INNER JOIN accounts a ON t.account_id = a.id
		LEFT JOIN categories c ON t.category_id = c.id
		WHERE a.user_id = ? AND t.date >= ? AND t.date <= ?`
	args := []any{userID, filter.From.String(), filter.To.String()}

	if filter.AccountID != "" {
		query += ` AND t.account_id = ?`
		args = append(args, filter.AccountID)
	}
	query += ` ORDER BY t.date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	details := []core.TransactionDetail{}
	for rows.Next() {
		var (
			d                 core.TransactionDetail
			dateStr           string
			categoryName      sql.NullString
			categoryID, notes sql.NullString
		)
		if err := rows.Scan(&d.ID, &dateStr, &categoryName, &categoryID, &d.Payee, &d.Amount.Cents, &notes, &d.Account, &d.AccountID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if d.Date, err = core.ParseDate(dateStr); err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
		}
		d.Category = nullToPtr(categoryName)
		d.CategoryID = nullToPtr(categoryID)
		d.Notes = nullToPtr(notes)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return details, nil
}

// GetTransaction returns one transaction reachable through the user's
// accounts, or ErrNotFound.
func (s *SQLiteStore) GetTransaction(ctx context.Context, userID, id string) (*core.Transaction, error) {
	var (
		t                 core.Transaction
		dateStr           string
		categoryID, notes sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT t.id, t.date, t.category_id, t.payee, t.amount_cents, t.notes, t.account_id
		 FROM transactions t
		 INNER JOIN accounts a ON t.account_id = a.id
		 WHERE t.id = ? AND a.user_id = ?`, id, userID).
		Scan(&t.ID, &dateStr, &categoryID, &t.Payee, &t.Amount.Cents, &notes, &t.AccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if t.Date, err = core.ParseDate(dateStr); err != nil {
		return nil, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
	}
	t.CategoryID = nullToPtr(categoryID)
	t.Notes = nullToPtr(notes)
	return &t, nil
}

// CreateTransaction inserts a new transaction. Account and category
// references are not ownership-checked at write time; reads enforce
// ownership through the account join.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, tx core.Transaction) (*core.Transaction, error) {
	tx.ID = uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, date, payee, amount_cents, notes, account_id, category_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Date.String(), tx.Payee, tx.Amount.Cents, tx.Notes, tx.AccountID, tx.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", tx.ID,
		"account_id", tx.AccountID,
		"amount_cents", tx.Amount.Cents)

	return &tx, nil
}

// BulkCreateTransactions inserts all payloads in one database transaction,
// assigning each a fresh id, and returns the inserted rows in input order.
func (s *SQLiteStore) BulkCreateTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	if len(txs) == 0 {
		return []core.Transaction{}, nil
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin bulk create: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx,
		`INSERT INTO transactions (id, date, payee, amount_cents, notes, account_id, category_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare bulk create: %w", err)
	}
	defer stmt.Close()

	inserted := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		tx.ID = uuid.NewString()
		if _, err := stmt.ExecContext(ctx,
			tx.ID, tx.Date.String(), tx.Payee, tx.Amount.Cents, tx.Notes, tx.AccountID, tx.CategoryID); err != nil {
			return nil, fmt.Errorf("bulk create transaction %d: %w", i, err)
		}
		inserted[i] = tx
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bulk create: %w", err)
	}

	slog.InfoContext(ctx, "Transactions bulk created", "count", len(inserted))

	return inserted, nil
}

// BulkDeleteTransactions removes the subset of the requested ids reachable
// through the user's accounts and returns the ids actually deleted. The
// owned id set is computed in the same statement as the delete.
func (s *SQLiteStore) BulkDeleteTransactions(ctx context.Context, userID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	query := fmt.Sprintf(
		`WITH transactions_to_delete AS (
			SELECT t.id FROM transactions t
			INNER JOIN accounts a ON t.account_id = a.id
			WHERE t.id IN (%s) AND a.user_id = ?
		)
		DELETE FROM transactions
		WHERE id IN (SELECT id FROM transactions_to_delete)
		RETURNING id`,
		placeholders(len(ids)))

	rows, err := s.db.QueryContext(ctx, query, append(toAnySlice(nil, ids), userID)...)
	if err != nil {
		return nil, fmt.Errorf("bulk delete transactions: %w", err)
	}
	defer rows.Close()

	deleted := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted transaction id: %w", err)
		}
		deleted = append(deleted, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions bulk deleted",
		"user_id", userID,
		"requested", len(ids),
		"deleted", len(deleted))

	return deleted, nil
}

// DeleteTransaction removes one transaction reachable through the user's
// accounts and returns its id, or ErrNotFound.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, userID, id string) (string, error) {
	query := `WITH transactions_to_delete AS (
			SELECT t.id FROM transactions t
			INNER JOIN accounts a ON t.account_id = a.id
			WHERE t.id = ? AND a.user_id = ?
		)
		DELETE FROM transactions
		WHERE id IN (SELECT id FROM transactions_to_delete)
		RETURNING id`

	var deleted string
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(&deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "user_id", userID, "transaction_id", deleted)
	return deleted, nil
}

// UpdateTransaction applies the provided field updates to one transaction
// reachable through the user's accounts and returns the updated row, or
// ErrNotFound. The owned id is resolved in the same statement as the update.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, userID, id string, params UpdateTransactionParams) (*core.Transaction, error) {
	set := []string{}
	args := []any{}

	if params.Date != nil {
		set = append(set, "date = ?")
		args = append(args, params.Date.String())
	}
	if params.Payee != nil {
		set = append(set, "payee = ?")
		args = append(args, *params.Payee)
	}
	if params.Amount != nil {
		set = append(set, "amount_cents = ?")
		args = append(args, params.Amount.Cents)
	}
	if params.Notes != nil {
		set = append(set, "notes = ?")
		args = append(args, *params.Notes)
	}
	if params.AccountID != nil {
		set = append(set, "account_id = ?")
		args = append(args, *params.AccountID)
	}
	if params.CategoryID != nil {
		set = append(set, "category_id = ?")
		args = append(args, *params.CategoryID)
	}

	if len(set) == 0 {
		return s.GetTransaction(ctx, userID, id)
	}

	query := fmt.Sprintf(
		`WITH transactions_to_update AS (
			SELECT t.id FROM transactions t
			INNER JOIN accounts a ON t.account_id = a.id
			WHERE t.id = ? AND a.user_id = ?
		)
		UPDATE transactions SET %s
		WHERE id IN (SELECT id FROM transactions_to_update)
		RETURNING id, date, payee, amount_cents, notes, account_id, category_id`,
		strings.Join(set, ", "))
	// The CTE's placeholders precede the SET placeholders in the statement.
	args = append([]any{id, userID}, args...)

	var (
		t                 core.Transaction
		dateStr           string
		categoryID, notes sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&t.ID, &dateStr, &t.Payee, &t.Amount.Cents, &notes, &t.AccountID, &categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	if t.Date, err = core.ParseDate(dateStr); err != nil {
		return nil, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
	}
	t.CategoryID = nullToPtr(categoryID)
	t.Notes = nullToPtr(notes)
	return &t, nil
}
