package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardmint/cardmint/internal/cardgen"
	"github.com/cardmint/cardmint/internal/domain"
	"github.com/cardmint/cardmint/internal/infrastructure/persistence/memory"
)

type issueFixture struct {
	bins    *memory.BINStore
	cards   *memory.CardStore
	ledger  *memory.Ledger
	service *IssueService
}

func newIssueFixture(t *testing.T, cfg IssueConfig) *issueFixture {
	t.Helper()

	bins := memory.NewBINStore()
	cards := memory.NewCardStore()
	ledger := memory.NewLedger()
	service := NewIssueService(bins, cards, ledger, cfg, slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithClock(func() time.Time { return testNow })
	return &issueFixture{bins: bins, cards: cards, ledger: ledger, service: service}
}

func TestRegisterBIN(t *testing.T) {
	f := newIssueFixture(t, DefaultIssueConfig())
	ctx := context.Background()

	bin, err := f.service.RegisterBIN(ctx, "422522", "Brazil", "Visa", "mint classic")
	require.NoError(t, err)
	assert.Equal(t, "422522", bin.Number)
	assert.Equal(t, "Brazil", bin.Country)

	_, err = f.service.RegisterBIN(ctx, "422522", "Brazil", "Visa", "mint classic")
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeDuplicateBIN))

	list, err := f.service.ListBINs(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRegisterBINRejectsInvalidPrefix(t *testing.T) {
	f := newIssueFixture(t, DefaultIssueConfig())

	for _, number := range []string{"", "42", "4225221234", "42a5"} {
		_, err := f.service.RegisterBIN(context.Background(), number, "Brazil", "Visa", "mint classic")
		assert.Error(t, err, "bin %q", number)
	}
}

func TestIssueCard(t *testing.T) {
	f := newIssueFixture(t, DefaultIssueConfig())
	ctx := context.Background()

	_, err := f.service.RegisterBIN(ctx, "422522", "Brazil", "Visa", "mint classic")
	require.NoError(t, err)

	card, err := f.service.IssueCard(ctx, "422522", "Ana Souza", "12345678900", "+55 11 91234-5678", 30)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(card.Number, "422522"))
	assert.NoError(t, cardgen.ValidatePAN(card.Number))
	assert.Len(t, card.CVV, 3)
	assert.Equal(t, domain.CardLive, card.Status)
	assert.True(t, card.Balance.IsZero())
	assert.Equal(t, "Brazil", card.Country)
	assert.Equal(t, 30, card.Age)
	assert.Equal(t, "422522", card.BINNumber)

	// Expiry is always in the future relative to the issuing clock.
	assert.False(t, card.IsExpired(testNow))
	assert.GreaterOrEqual(t, card.ExpiryYear, testNow.Year()+1)
	assert.LessOrEqual(t, card.ExpiryYear, testNow.Year()+DefaultIssueConfig().ExpiryYears)

	found, err := f.service.GetCard(ctx, card.Number)
	require.NoError(t, err)
	assert.Equal(t, card.Number, found.Number)
}

func TestIssueCardUnknownBIN(t *testing.T) {
	f := newIssueFixture(t, DefaultIssueConfig())

	_, err := f.service.IssueCard(context.Background(), "999999", "Ana Souza", "12345678900", "", 30)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeBINNotFound))
}

func TestIssueCardInitialStatusActive(t *testing.T) {
	cfg := DefaultIssueConfig()
	cfg.InitialStatus = domain.CardActive
	f := newIssueFixture(t, cfg)
	ctx := context.Background()

	_, err := f.service.RegisterBIN(ctx, "422522", "Brazil", "Visa", "mint classic")
	require.NoError(t, err)

	card, err := f.service.IssueCard(ctx, "422522", "Ana Souza", "12345678900", "", 30)
	require.NoError(t, err)
	assert.Equal(t, domain.CardActive, card.Status)
}

func TestFundCard(t *testing.T) {
	f := newIssueFixture(t, DefaultIssueConfig())
	ctx := context.Background()

	_, err := f.service.RegisterBIN(ctx, "422522", "Brazil", "Visa", "mint classic")
	require.NoError(t, err)
	card, err := f.service.IssueCard(ctx, "422522", "Ana Souza", "12345678900", "", 30)
	require.NoError(t, err)

	funded, err := f.service.FundCard(ctx, card.Number, "12345678900", decimal.NewFromInt(250))
	require.NoError(t, err)
	assert.True(t, funded.Balance.Equal(decimal.NewFromInt(250)))

	// Top-ups land in the ledger as Completed entries.
	completed, err := f.ledger.CountByStatus(ctx, card.Number, domain.TxnCompleted)
	require.NoError(t, err)
	assert.Equal(t, 1, completed)
}

func TestFundCardValidation(t *testing.T) {
	f := newIssueFixture(t, DefaultIssueConfig())
	ctx := context.Background()

	_, err := f.service.RegisterBIN(ctx, "422522", "Brazil", "Visa", "mint classic")
	require.NoError(t, err)
	card, err := f.service.IssueCard(ctx, "422522", "Ana Souza", "12345678900", "", 30)
	require.NoError(t, err)

	_, err = f.service.FundCard(ctx, card.Number, "", decimal.Zero)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidAmount))

	// A mismatched national ID is reported as not-found, never as a
	// wrong-ID hint.
	_, err = f.service.FundCard(ctx, card.Number, "00000000000", decimal.NewFromInt(50))
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeCardNotFound))

	_, err = f.service.FundCard(ctx, "4539578763621486", "", decimal.NewFromInt(50))
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeCardNotFound))
}
