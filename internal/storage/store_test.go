package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"fintrack/internal/core"
)

const (
	userOne = "user_1"
	userTwo = "user_2"
)

type StoreTestSuite struct {
	suite.Suite
	store *SQLiteStore
	ctx   context.Context
}

func (s *StoreTestSuite) SetupTest() {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(s.T(), err, "failed to create test store")
	s.store = store
	s.ctx = context.Background()
}

func (s *StoreTestSuite) TearDownTest() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *StoreTestSuite) mustCreateAccount(userID, name string) *core.Account {
	a, err := s.store.CreateAccount(s.ctx, userID, name)
	require.NoError(s.T(), err)
	return a
}

func (s *StoreTestSuite) mustCreateTransaction(accountID string, date core.Date, payee string, cents int64) *core.Transaction {
	tx, err := s.store.CreateTransaction(s.ctx, core.Transaction{
		Date:      date,
		Payee:     payee,
		Amount:    core.Money{Cents: cents},
		AccountID: accountID,
	})
	require.NoError(s.T(), err)
	return tx
}

func (s *StoreTestSuite) TestCreateAccountStampsOwner() {
	a := s.mustCreateAccount(userOne, "Checking")
	assert.NotEmpty(s.T(), a.ID)
	assert.Equal(s.T(), userOne, a.UserID)
	assert.Equal(s.T(), "Checking", a.Name)
}

func (s *StoreTestSuite) TestListAccountsScopedToOwner() {
	s.mustCreateAccount(userOne, "Checking")
	s.mustCreateAccount(userTwo, "Savings")

	mine, err := s.store.ListAccounts(s.ctx, userOne)
	require.NoError(s.T(), err)
	require.Len(s.T(), mine, 1)
	assert.Equal(s.T(), "Checking", mine[0].Name)

	theirs, err := s.store.ListAccounts(s.ctx, userTwo)
	require.NoError(s.T(), err)
	require.Len(s.T(), theirs, 1)
	assert.Equal(s.T(), "Savings", theirs[0].Name)
}

func (s *StoreTestSuite) TestGetAccountMasksUnownedRows() {
	a := s.mustCreateAccount(userOne, "Checking")

	_, err := s.store.GetAccount(s.ctx, userTwo, a.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound, "unowned row must look missing")

	_, err = s.store.GetAccount(s.ctx, userOne, "nonexistent")
	assert.ErrorIs(s.T(), err, ErrNotFound)

	got, err := s.store.GetAccount(s.ctx, userOne, a.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), a.ID, got.ID)
}

func (s *StoreTestSuite) TestUpdateAccountOwnershipScoped() {
	a := s.mustCreateAccount(userOne, "Checking")

	_, err := s.store.UpdateAccount(s.ctx, userTwo, a.ID, "Hijacked")
	assert.ErrorIs(s.T(), err, ErrNotFound)

	updated, err := s.store.UpdateAccount(s.ctx, userOne, a.ID, "Everyday")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Everyday", updated.Name)
	assert.Equal(s.T(), userOne, updated.UserID, "owner must be immutable")
}

func (s *StoreTestSuite) TestDeleteAccountOwnershipScoped() {
	a := s.mustCreateAccount(userOne, "Checking")

	_, err := s.store.DeleteAccount(s.ctx, userTwo, a.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)

	id, err := s.store.DeleteAccount(s.ctx, userOne, a.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), a.ID, id)

	_, err = s.store.GetAccount(s.ctx, userOne, a.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *StoreTestSuite) TestDeleteAccountCascadesTransactions() {
	acc := s.mustCreateAccount(userOne, "Checking")
	today := core.Today()
	s.mustCreateTransaction(acc.ID, today, "Grocer", -100)
	s.mustCreateTransaction(acc.ID, today, "Cafe", -200)

	id, err := s.store.DeleteAccount(s.ctx, userOne, acc.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), acc.ID, id)

	var count int
	err = s.store.db.QueryRowContext(s.ctx, "SELECT COUNT(*) FROM transactions").Scan(&count)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), count, "transactions on a deleted account must go with it")
}

func (s *StoreTestSuite) TestDeleteCategoryClearsTransactionReferences() {
	acc := s.mustCreateAccount(userOne, "Checking")
	cat, err := s.store.CreateCategory(s.ctx, userOne, "Food")
	require.NoError(s.T(), err)

	tx, err := s.store.CreateTransaction(s.ctx, core.Transaction{
		Date:       core.Today(),
		Payee:      "Grocer",
		Amount:     core.Money{Cents: -1250},
		AccountID:  acc.ID,
		CategoryID: &cat.ID,
	})
	require.NoError(s.T(), err)

	_, err = s.store.DeleteCategory(s.ctx, userOne, cat.ID)
	require.NoError(s.T(), err)

	got, err := s.store.GetTransaction(s.ctx, userOne, tx.ID)
	require.NoError(s.T(), err, "transaction must survive its category")
	assert.Nil(s.T(), got.CategoryID)
}

func (s *StoreTestSuite) TestBulkDeleteAccountsIgnoresUnownedIDs() {
	mine := s.mustCreateAccount(userOne, "Mine")
	other := s.mustCreateAccount(userTwo, "Theirs")

	deleted, err := s.store.BulkDeleteAccounts(s.ctx, userOne, []string{mine.ID, other.ID, "ghost"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{mine.ID}, deleted)

	// The other user's account survives.
	got, err := s.store.GetAccount(s.ctx, userTwo, other.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), other.ID, got.ID)
}

func (s *StoreTestSuite) TestBulkDeleteAccountsEmptyInput() {
	deleted, err := s.store.BulkDeleteAccounts(s.ctx, userOne, nil)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), deleted)
}

func (s *StoreTestSuite) TestCategoryLifecycle() {
	c, err := s.store.CreateCategory(s.ctx, userOne, "Food")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), userOne, c.UserID)

	_, err = s.store.GetCategory(s.ctx, userTwo, c.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)

	updated, err := s.store.UpdateCategory(s.ctx, userOne, c.ID, "Groceries")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Groceries", updated.Name)

	id, err := s.store.DeleteCategory(s.ctx, userOne, c.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), c.ID, id)
}

func (s *StoreTestSuite) TestListTransactionsJoinsAndScopes() {
	mine := s.mustCreateAccount(userOne, "Checking")
	theirs := s.mustCreateAccount(userTwo, "Savings")

	cat, err := s.store.CreateCategory(s.ctx, userOne, "Food")
	require.NoError(s.T(), err)

	today := core.Today()
	tx, err := s.store.CreateTransaction(s.ctx, core.Transaction{
		Date:       today,
		Payee:      "Grocer",
		Amount:     core.Money{Cents: -1250},
		AccountID:  mine.ID,
		CategoryID: &cat.ID,
	})
	require.NoError(s.T(), err)
	s.mustCreateTransaction(theirs.ID, today, "Other", -500)

	filter := TransactionFilter{From: today.AddDays(-30), To: today}
	rows, err := s.store.ListTransactions(s.ctx, userOne, filter)
	require.NoError(s.T(), err)
	require.Len(s.T(), rows, 1, "must not see transactions on other users' accounts")

	got := rows[0]
	assert.Equal(s.T(), tx.ID, got.ID)
	assert.Equal(s.T(), "Checking", got.Account)
	require.NotNil(s.T(), got.Category)
	assert.Equal(s.T(), "Food", *got.Category)
	assert.Equal(s.T(), int64(-1250), got.Amount.Cents)
}

func (s *StoreTestSuite) TestListTransactionsDateRangeInclusive() {
	acc := s.mustCreateAccount(userOne, "Checking")
	base := core.NewDate(2025, 6, 15)

	inRangeLow := s.mustCreateTransaction(acc.ID, base.AddDays(-30), "Edge low", -100)
	inRangeHigh := s.mustCreateTransaction(acc.ID, base, "Edge high", -200)
	s.mustCreateTransaction(acc.ID, base.AddDays(-31), "Too old", -300)
	s.mustCreateTransaction(acc.ID, base.AddDays(1), "Too new", -400)

	rows, err := s.store.ListTransactions(s.ctx, userOne, TransactionFilter{
		From: base.AddDays(-30),
		To:   base,
	})
	require.NoError(s.T(), err)
	require.Len(s.T(), rows, 2)

	// Newest first.
	assert.Equal(s.T(), inRangeHigh.ID, rows[0].ID)
	assert.Equal(s.T(), inRangeLow.ID, rows[1].ID)
}

func (s *StoreTestSuite) TestListTransactionsAccountFilter() {
	checking := s.mustCreateAccount(userOne, "Checking")
	savings := s.mustCreateAccount(userOne, "Savings")
	today := core.Today()

	s.mustCreateTransaction(checking.ID, today, "A", -100)
	wanted := s.mustCreateTransaction(savings.ID, today, "B", -200)

	rows, err := s.store.ListTransactions(s.ctx, userOne, TransactionFilter{
		From:      today.AddDays(-30),
		To:        today,
		AccountID: savings.ID,
	})
	require.NoError(s.T(), err)
	require.Len(s.T(), rows, 1)
	assert.Equal(s.T(), wanted.ID, rows[0].ID)
}

func (s *StoreTestSuite) TestTransactionOnForeignAccountInvisibleToCreator() {
	// Writes do not verify account ownership; visibility is enforced on read.
	foreign := s.mustCreateAccount(userTwo, "Foreign")
	today := core.Today()

	tx := s.mustCreateTransaction(foreign.ID, today, "Sneaky", -100)

	_, err := s.store.GetTransaction(s.ctx, userOne, tx.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)

	rows, err := s.store.ListTransactions(s.ctx, userOne, TransactionFilter{
		From: today.AddDays(-30), To: today,
	})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), rows)

	// The account's owner sees it.
	got, err := s.store.GetTransaction(s.ctx, userTwo, tx.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), tx.ID, got.ID)
}

func (s *StoreTestSuite) TestBulkCreateTransactions() {
	acc := s.mustCreateAccount(userOne, "Checking")
	today := core.Today()

	inserted, err := s.store.BulkCreateTransactions(s.ctx, []core.Transaction{
		{Date: today, Payee: "One", Amount: core.Money{Cents: -100}, AccountID: acc.ID},
		{Date: today, Payee: "Two", Amount: core.Money{Cents: -200}, AccountID: acc.ID},
	})
	require.NoError(s.T(), err)
	require.Len(s.T(), inserted, 2)
	assert.NotEmpty(s.T(), inserted[0].ID)
	assert.NotEmpty(s.T(), inserted[1].ID)
	assert.NotEqual(s.T(), inserted[0].ID, inserted[1].ID)
	assert.Equal(s.T(), "One", inserted[0].Payee)

	rows, err := s.store.ListTransactions(s.ctx, userOne, TransactionFilter{
		From: today.AddDays(-30), To: today,
	})
	require.NoError(s.T(), err)
	assert.Len(s.T(), rows, 2)
}

func (s *StoreTestSuite) TestBulkDeleteTransactionsScopedThroughAccount() {
	mine := s.mustCreateAccount(userOne, "Mine")
	theirs := s.mustCreateAccount(userTwo, "Theirs")
	today := core.Today()

	owned := s.mustCreateTransaction(mine.ID, today, "Owned", -100)
	foreign := s.mustCreateTransaction(theirs.ID, today, "Foreign", -200)

	deleted, err := s.store.BulkDeleteTransactions(s.ctx, userOne, []string{owned.ID, foreign.ID, "ghost"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{owned.ID}, deleted)

	got, err := s.store.GetTransaction(s.ctx, userTwo, foreign.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), foreign.ID, got.ID)
}

func (s *StoreTestSuite) TestDeleteTransactionScopedThroughAccount() {
	mine := s.mustCreateAccount(userOne, "Mine")
	theirs := s.mustCreateAccount(userTwo, "Theirs")
	today := core.Today()

	owned := s.mustCreateTransaction(mine.ID, today, "Owned", -100)
	foreign := s.mustCreateTransaction(theirs.ID, today, "Foreign", -200)

	id, err := s.store.DeleteTransaction(s.ctx, userOne, owned.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), owned.ID, id)

	_, err = s.store.DeleteTransaction(s.ctx, userOne, foreign.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)

	got, err := s.store.GetTransaction(s.ctx, userTwo, foreign.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), foreign.ID, got.ID)
}

func (s *StoreTestSuite) TestUpdateTransactionPatchSemantics() {
	acc := s.mustCreateAccount(userOne, "Checking")
	today := core.Today()
	tx := s.mustCreateTransaction(acc.ID, today, "Before", -100)

	payee := "After"
	amount := core.Money{Cents: -250}
	updated, err := s.store.UpdateTransaction(s.ctx, userOne, tx.ID, UpdateTransactionParams{
		Payee:  &payee,
		Amount: &amount,
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "After", updated.Payee)
	assert.Equal(s.T(), int64(-250), updated.Amount.Cents)
	assert.Equal(s.T(), today.String(), updated.Date.String(), "unset fields must be untouched")
	assert.Equal(s.T(), acc.ID, updated.AccountID)
}

func (s *StoreTestSuite) TestUpdateTransactionOwnershipScoped() {
	theirs := s.mustCreateAccount(userTwo, "Theirs")
	tx := s.mustCreateTransaction(theirs.ID, core.Today(), "Foreign", -100)

	payee := "Hijacked"
	_, err := s.store.UpdateTransaction(s.ctx, userOne, tx.ID, UpdateTransactionParams{Payee: &payee})
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *StoreTestSuite) TestUpdateTransactionNoFieldsReturnsCurrent() {
	acc := s.mustCreateAccount(userOne, "Checking")
	tx := s.mustCreateTransaction(acc.ID, core.Today(), "Same", -100)

	got, err := s.store.UpdateTransaction(s.ctx, userOne, tx.ID, UpdateTransactionParams{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), tx.ID, got.ID)
	assert.Equal(s.T(), "Same", got.Payee)
}

func (s *StoreTestSuite) TestAppendAndListAuditLogs() {
	start := time.Now().UTC().Add(-time.Second)

	first, err := s.store.AppendAuditLog(s.ctx, userOne, "Created a new account")
	require.NoError(s.T(), err)
	second, err := s.store.AppendAuditLog(s.ctx, userTwo, "Fetched account list")
	require.NoError(s.T(), err)

	assert.Greater(s.T(), second.ID, first.ID)
	assert.False(s.T(), first.Timestamp.Before(start), "timestamp must not precede the call")

	logs, err := s.store.ListAuditLogs(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), logs, 2)

	// Newest first; ids break timestamp ties.
	assert.Equal(s.T(), second.ID, logs[0].ID)
	assert.Equal(s.T(), first.ID, logs[1].ID)
	assert.Equal(s.T(), "Fetched account list", logs[0].Action)
	assert.Equal(s.T(), userTwo, logs[0].UserID)
}

func (s *StoreTestSuite) TestListAuditLogsEmpty() {
	logs, err := s.store.ListAuditLogs(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), logs)
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
