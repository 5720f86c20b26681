package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborstreet/tally/internal/common"
	"github.com/harborstreet/tally/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func storeTxn(account, description string, amount float64) model.Transaction {
	return model.Transaction{
		Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Description: description,
		Account:     account,
		Amount:      amount,
		Type:        "expense",
		Category:    "Utilities",
		Confidence:  0.9,
		Method:      model.MethodRule,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestTransactionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	balance := 512.34
	txn := storeTxn("0111", "VYVE BROADBAND PAYMENT", -89.99)
	txn.Balance = &balance
	txn.SubCategory = "Internet"
	txn.Property = "5th Street"
	txn.Entity = "Real Estate"
	txn.Reasoning = "Known internet provider"

	result, err := store.AddTransactionBatch(ctx, []model.Transaction{txn})
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Success: 1}, result)

	all, err := store.LoadAllTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	assert.Equal(t, txn.GenerateHash(), got.ID)
	assert.Equal(t, "VYVE BROADBAND PAYMENT", got.Description)
	assert.Equal(t, "0111", got.Account)
	assert.InDelta(t, -89.99, got.Amount, 0.001)
	require.NotNil(t, got.Balance)
	assert.InDelta(t, 512.34, *got.Balance, 0.001)
	assert.Equal(t, "Internet", got.SubCategory)
	assert.Equal(t, "5th Street", got.Property)
	assert.Equal(t, model.MethodRule, got.Method)
	assert.True(t, got.Date.Equal(txn.Date))
}

func TestGetTransactionByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	txn := storeTxn("8529", "HOME DEPOT #123", -45.50)
	_, err := store.AddTransactionBatch(ctx, []model.Transaction{txn})
	require.NoError(t, err)

	got, err := store.GetTransactionByID(ctx, txn.GenerateHash())
	require.NoError(t, err)
	assert.Equal(t, "HOME DEPOT #123", got.Description)

	_, err = store.GetTransactionByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestBatchCountsInvalidRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	txns := []model.Transaction{
		storeTxn("0111", "GOOD ROW", -10),
		storeTxn("0111", "", -20), // empty description fails validation
		storeTxn("0111", "ANOTHER GOOD ROW", -30),
	}

	result, err := store.AddTransactionBatch(ctx, txns)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Success: 2, Failed: 1}, result)

	all, err := store.LoadAllTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRecommittingABatchIsAnUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	batch := []model.Transaction{storeTxn("0111", "NETFLIX.COM", -15.49)}
	for i := 0; i < 2; i++ {
		result, err := store.AddTransactionBatch(ctx, batch)
		require.NoError(t, err)
		assert.Equal(t, BatchResult{Success: 1}, result)
	}

	all, err := store.LoadAllTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCustomPatternsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	minAmount := 100.0
	patterns := []model.CustomPattern{
		{
			ID:        "p-1",
			Name:      "Coffee shops",
			Category:  "Other Expenses",
			Keywords:  []string{"coffee", "espresso"},
			CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "p-2",
			Name:      "Big deposits",
			Category:  "Business Income",
			Account:   "7991",
			Entity:    "Tech Business",
			Keywords:  []string{"deposit"},
			AmountMin: &minAmount,
			CreatedAt: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		},
	}

	require.NoError(t, store.ReplaceCustomPatterns(ctx, patterns))

	got, err := store.GetCustomPatterns(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Insertion order survives the round trip.
	assert.Equal(t, "p-1", got[0].ID)
	assert.Equal(t, "p-2", got[1].ID)
	assert.Equal(t, []string{"coffee", "espresso"}, got[0].Keywords)
	assert.Nil(t, got[0].AmountMin)
	require.NotNil(t, got[1].AmountMin)
	assert.InDelta(t, 100.0, *got[1].AmountMin, 0.001)
	assert.Equal(t, "7991", got[1].Account)
}

func TestReplacePatternsWithEmptyListClears(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceCustomPatterns(ctx, []model.CustomPattern{
		{ID: "p-1", Name: "Temp", Category: "Other Expenses", Keywords: []string{"x"}},
	}))
	require.NoError(t, store.ReplaceCustomPatterns(ctx, []model.CustomPattern{}))

	got, err := store.GetCustomPatterns(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReplacePatternsRejectsMalformedEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.ReplaceCustomPatterns(ctx, []model.CustomPattern{
		{ID: "", Name: "No id", Category: "Other Expenses"},
	})
	assert.Error(t, err)

	err = store.ReplaceCustomPatterns(ctx, nil)
	assert.ErrorIs(t, err, ErrNilParameter)
}

func TestNewFactorySelectsBackend(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, Config{DBPath: filepath.Join(t.TempDir(), "tally.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	_, err = New(ctx, Config{Backend: "postgres"})
	assert.Error(t, err)
}
