package services

import (
	"context"

	"github.com/cardmint/cardmint/internal/application"
	"github.com/shopspring/decimal"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

// HistoryEntry is one row of the transaction history view.
type HistoryEntry struct {
	CardNumber string          `json:"card_number"`
	Amount     decimal.Decimal `json:"amount"`
}

// HistoryPage is a page of transaction history plus pagination metadata.
type HistoryPage struct {
	Entries     []HistoryEntry
	TotalPages  int
	CurrentPage int
}

// QueryService serves read-only views over the ledger.
type QueryService struct {
	ledger application.TransactionLedger
}

func NewQueryService(ledger application.TransactionLedger) *QueryService {
	return &QueryService{ledger: ledger}
}

// History returns one page of ledger entries in append order. Out-of-range
// pages return an empty page rather than an error; page and perPage fall back
// to their defaults when not positive.
func (s *QueryService) History(ctx context.Context, page, perPage int) (*HistoryPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	total, err := s.ledger.Count(ctx)
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	txns, err := s.ledger.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	entries := make([]HistoryEntry, 0, len(txns))
	for _, txn := range txns {
		entries = append(entries, HistoryEntry{
			CardNumber: txn.CardNumber,
			Amount:     txn.Amount,
		})
	}

	return &HistoryPage{
		Entries:     entries,
		TotalPages:  (total + perPage - 1) / perPage,
		CurrentPage: page,
	}, nil
}
