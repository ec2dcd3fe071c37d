// Package application holds the orchestration layer: storage ports, service
// errors, and their HTTP mapping.
package application

import (
	"context"
	"time"

	"github.com/cardmint/cardmint/internal/domain"
)

// CardRegistry owns all mutable card state. Implementations must serialize
// mutations per card number: Acquire blocks until the caller holds exclusive
// access to that card's read-modify-write section and returns the release
// function. Different card numbers proceed independently.
type CardRegistry interface {
	Find(ctx context.Context, number string) (*domain.Card, error)
	Create(ctx context.Context, card *domain.Card) error
	Save(ctx context.Context, card *domain.Card) error
	Acquire(ctx context.Context, number string) (release func(), err error)
}

// TransactionLedger is the append-only log of recorded attempts. Entries are
// never updated or deleted. Windowed counts are heuristic risk signals, not
// balances; a consistent snapshot at query time is sufficient.
type TransactionLedger interface {
	Append(ctx context.Context, txn *domain.Transaction) (int64, error)
	CountSince(ctx context.Context, cardNumber string, since time.Time) (int, error)
	CountByStatus(ctx context.Context, cardNumber string, status domain.TransactionStatus) (int, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Transaction, error)
	Count(ctx context.Context) (int, error)
}

// BINRegistry stores card-generation prefixes. Issuance-only.
type BINRegistry interface {
	Create(ctx context.Context, bin *domain.BIN) error
	Find(ctx context.Context, number string) (*domain.BIN, error)
	List(ctx context.Context) ([]*domain.BIN, error)
}
