package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardmint/cardmint/internal/domain"
)

func TestCardStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewCardStore()

	_, err := store.Find(ctx, "4225224763621486")
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeCardNotFound))

	card := &domain.Card{
		Number:  "4225224763621486",
		Status:  domain.CardLive,
		Balance: decimal.NewFromInt(100),
	}
	require.NoError(t, store.Create(ctx, card))

	err = store.Create(ctx, card)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeDuplicateCard))

	found, err := store.Find(ctx, card.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.CardLive, found.Status)

	// Mutating the returned card must not leak into the store.
	found.Status = domain.CardDead
	again, err := store.Find(ctx, card.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.CardLive, again.Status)

	found.Balance = decimal.NewFromInt(60)
	require.NoError(t, store.Save(ctx, found))
	saved, err := store.Find(ctx, card.Number)
	require.NoError(t, err)
	assert.True(t, saved.Balance.Equal(decimal.NewFromInt(60)))

	err = store.Save(ctx, &domain.Card{Number: "0000000000000000"})
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeCardNotFound))
}

func TestCardStoreAcquireSerializes(t *testing.T) {
	ctx := context.Background()
	store := NewCardStore()
	card := &domain.Card{Number: "4225224763621486", Balance: decimal.NewFromInt(1000)}
	require.NoError(t, store.Create(ctx, card))

	// 50 goroutines each debit 10 under the per-card lock. Without
	// serialization the read-modify-write would lose updates.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := store.Acquire(ctx, card.Number)
			require.NoError(t, err)
			defer release()

			c, err := store.Find(ctx, card.Number)
			require.NoError(t, err)
			c.Balance = c.Balance.Sub(decimal.NewFromInt(10))
			require.NoError(t, store.Save(ctx, c))
		}()
	}
	wg.Wait()

	final, err := store.Find(ctx, card.Number)
	require.NoError(t, err)
	assert.True(t, final.Balance.Equal(decimal.NewFromInt(500)), "got %s", final.Balance)
}

func TestLedgerAppendAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	for i := 1; i <= 3; i++ {
		id, err := ledger.Append(ctx, &domain.Transaction{
			CardNumber: "4225224763621486",
			Amount:     decimal.NewFromInt(int64(i)),
			Status:     domain.TxnCompleted,
			Timestamp:  time.Now().UTC(),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i), id)
	}

	total, err := ledger.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestLedgerCountSince(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	stamps := []time.Time{
		now.Add(-2 * time.Second),
		now.Add(-500 * time.Millisecond),
		now.Add(-100 * time.Millisecond),
		now,
	}
	for _, ts := range stamps {
		_, err := ledger.Append(ctx, &domain.Transaction{
			CardNumber: "4225224763621486",
			Status:     domain.TxnCompleted,
			Timestamp:  ts,
		})
		require.NoError(t, err)
	}
	// A different card inside the window must not count.
	_, err := ledger.Append(ctx, &domain.Transaction{
		CardNumber: "5401234763621486",
		Status:     domain.TxnCompleted,
		Timestamp:  now,
	})
	require.NoError(t, err)

	count, err := ledger.CountSince(ctx, "4225224763621486", now.Add(-time.Second))
	require.NoError(t, err)
	// The boundary is inclusive and the 2s-old entry falls outside.
	assert.Equal(t, 3, count)
}

func TestLedgerCountByStatus(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	for i := 0; i < 2; i++ {
		_, err := ledger.Append(ctx, &domain.Transaction{
			CardNumber: "4225224763621486",
			Status:     domain.TxnFailed,
			Timestamp:  time.Now().UTC(),
		})
		require.NoError(t, err)
	}
	_, err := ledger.Append(ctx, &domain.Transaction{
		CardNumber: "4225224763621486",
		Status:     domain.TxnCompleted,
		Timestamp:  time.Now().UTC(),
	})
	require.NoError(t, err)

	failed, err := ledger.CountByStatus(ctx, "4225224763621486", domain.TxnFailed)
	require.NoError(t, err)
	assert.Equal(t, 2, failed)

	completed, err := ledger.CountByStatus(ctx, "4225224763621486", domain.TxnCompleted)
	require.NoError(t, err)
	assert.Equal(t, 1, completed)
}

func TestLedgerList(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	for i := 0; i < 7; i++ {
		_, err := ledger.Append(ctx, &domain.Transaction{
			CardNumber: "4225224763621486",
			Amount:     decimal.NewFromInt(int64(i)),
			Status:     domain.TxnCompleted,
			Timestamp:  time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	page, err := ledger.List(ctx, 3, 0)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, int64(1), page[0].ID)

	page, err = ledger.List(ctx, 3, 6)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(7), page[0].ID)

	page, err = ledger.List(ctx, 3, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestBINStore(t *testing.T) {
	ctx := context.Background()
	store := NewBINStore()

	_, err := store.Find(ctx, "422522")
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeBINNotFound))

	require.NoError(t, store.Create(ctx, &domain.BIN{Number: "540123", Country: "Brazil", CardVendor: "Mastercard", Name: "mint standard"}))
	require.NoError(t, store.Create(ctx, &domain.BIN{Number: "422522", Country: "Brazil", CardVendor: "Visa", Name: "mint classic"}))

	err = store.Create(ctx, &domain.BIN{Number: "422522"})
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeDuplicateBIN))

	bin, err := store.Find(ctx, "422522")
	require.NoError(t, err)
	assert.Equal(t, "Visa", bin.CardVendor)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Sorted by BIN number.
	assert.Equal(t, "422522", list[0].Number)
	assert.Equal(t, "540123", list[1].Number)
}
