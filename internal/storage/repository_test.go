package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "ledger.db")
	repo, err := NewSQLiteRepository(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, path
}

func mustCreate(t *testing.T, repo *SQLiteRepository, date, category, amount string) core.Transaction {
	t.Helper()
	a, err := core.ParseAmount(amount)
	require.NoError(t, err)
	tx, err := repo.Create(context.Background(), core.TransactionInput{
		Date: date, Category: category, Description: category + " on " + date, Amount: a,
	})
	require.NoError(t, err)
	return tx
}

func TestSQLiteRepository_CreateGet(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	tx := mustCreate(t, repo, "2024-03-01", "Food", "-12.345")
	assert.Equal(t, int64(1), tx.ID)

	got, err := repo.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", got.Date)
	assert.Equal(t, "Food", got.Category)
	// Amounts round-trip exactly; only rendering rounds.
	assert.Equal(t, "-12.345", got.Amount.String())

	_, err = repo.Get(ctx, 42)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteRepository_CreateRejectsBadDate(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.Create(context.Background(), core.TransactionInput{Date: "2024/03/01", Amount: core.NewAmount(1)})
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}

func TestSQLiteRepository_ListFilters(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	mustCreate(t, repo, "2024-01-15", "Food", "-10")
	mustCreate(t, repo, "2024-02-01", "Rent", "-800")
	mustCreate(t, repo, "2024-02-20", "food", "-20")
	mustCreate(t, repo, "2024-03-05", "Salary", "2000")

	tests := []struct {
		name    string
		filter  core.Filter
		wantIDs []int64
	}{
		{"no filter", core.Filter{}, []int64{1, 2, 3, 4}},
		{"category case-insensitive", core.Filter{Category: "FOOD"}, []int64{1, 3}},
		{"inclusive range", core.Filter{StartDate: "2024-02-01", EndDate: "2024-02-20"}, []int64{2, 3}},
		{"start only", core.Filter{StartDate: "2024-02-21"}, []int64{4}},
		{"unparsable bound ignored", core.Filter{StartDate: "yesterday", EndDate: "2024-01-31"}, []int64{1}},
		{"combined", core.Filter{StartDate: "2024-02-01", Category: "food"}, []int64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]int64, 0, len(txs))
			for _, tx := range txs {
				ids = append(ids, tx.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSQLiteRepository_PatchAndDelete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	tx := mustCreate(t, repo, "2024-03-01", "Food", "-5")

	amount := core.NewAmount(-7.5)
	updated, err := repo.Patch(ctx, tx.ID, core.TransactionPatch{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "-7.50", updated.Amount.Format())
	assert.Equal(t, "Food", updated.Category)

	stored, err := repo.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "-7.50", stored.Amount.Format())

	bad := "03-01-2024"
	_, err = repo.Patch(ctx, tx.ID, core.TransactionPatch{Date: &bad})
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	_, err = repo.Patch(ctx, 99, core.TransactionPatch{})
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, tx.ID))
	assert.ErrorIs(t, repo.Delete(ctx, tx.ID), core.ErrNotFound)
}

func TestSQLiteRepository_ReopenKeepsData(t *testing.T) {
	repo, path := newTestRepo(t)
	mustCreate(t, repo, "2024-03-01", "Food", "-5")
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteRepository(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	txs, err := reopened.List(context.Background(), core.Filter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Food", txs[0].Category)
}
