package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardmint/cardmint/internal/domain"
	"github.com/cardmint/cardmint/internal/infrastructure/persistence/memory"
)

func seededQueryService(t *testing.T, entries int) *QueryService {
	t.Helper()

	ledger := memory.NewLedger()
	for i := 1; i <= entries; i++ {
		_, err := ledger.Append(context.Background(), &domain.Transaction{
			CardNumber: testPAN,
			Amount:     decimal.NewFromInt(int64(i)),
			Status:     domain.TxnCompleted,
			Timestamp:  time.Now().UTC(),
		})
		require.NoError(t, err)
	}
	return NewQueryService(ledger)
}

func TestHistoryPagination(t *testing.T) {
	s := seededQueryService(t, 12)

	page, err := s.History(context.Background(), 2, 5)
	require.NoError(t, err)

	require.Len(t, page.Entries, 5)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	// Append order: page 2 of 5 starts at the sixth entry.
	assert.True(t, page.Entries[0].Amount.Equal(decimal.NewFromInt(6)))
	assert.True(t, page.Entries[4].Amount.Equal(decimal.NewFromInt(10)))
}

func TestHistoryDefaults(t *testing.T) {
	s := seededQueryService(t, 12)

	// Non-positive parameters fall back to page 1, 10 per page.
	page, err := s.History(context.Background(), 0, 0)
	require.NoError(t, err)

	assert.Len(t, page.Entries, 10)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
}

func TestHistoryLastPartialPage(t *testing.T) {
	s := seededQueryService(t, 12)

	page, err := s.History(context.Background(), 3, 5)
	require.NoError(t, err)

	assert.Len(t, page.Entries, 2)
	assert.Equal(t, 3, page.TotalPages)
}

func TestHistoryOutOfRangePageIsEmpty(t *testing.T) {
	s := seededQueryService(t, 12)

	page, err := s.History(context.Background(), 9, 5)
	require.NoError(t, err)

	assert.Empty(t, page.Entries)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 9, page.CurrentPage)
}

func TestHistoryEmptyLedger(t *testing.T) {
	s := seededQueryService(t, 0)

	page, err := s.History(context.Background(), 1, 10)
	require.NoError(t, err)

	assert.Empty(t, page.Entries)
	assert.Zero(t, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
}
