package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cardmint/cardmint/internal/domain"
)

// Ledger is an append-only in-memory transaction log. IDs are sequential in
// append order, which List relies on.
type Ledger struct {
	mu      sync.RWMutex
	entries []domain.Transaction
	nextID  int64
}

func NewLedger() *Ledger {
	return &Ledger{nextID: 1}
}

func (l *Ledger) Append(ctx context.Context, txn *domain.Transaction) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := *txn
	entry.ID = l.nextID
	l.nextID++
	l.entries = append(l.entries, entry)
	return entry.ID, nil
}

func (l *Ledger) CountSince(ctx context.Context, cardNumber string, since time.Time) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0
	for i := range l.entries {
		if l.entries[i].CardNumber == cardNumber && !l.entries[i].Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (l *Ledger) CountByStatus(ctx context.Context, cardNumber string, status domain.TransactionStatus) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0
	for i := range l.entries {
		if l.entries[i].CardNumber == cardNumber && l.entries[i].Status == status {
			count++
		}
	}
	return count, nil
}

func (l *Ledger) List(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if offset >= len(l.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(l.entries) {
		end = len(l.entries)
	}

	out := make([]*domain.Transaction, 0, end-offset)
	for i := offset; i < end; i++ {
		entry := l.entries[i]
		out = append(out, &entry)
	}
	return out, nil
}

func (l *Ledger) Count(ctx context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries), nil
}
