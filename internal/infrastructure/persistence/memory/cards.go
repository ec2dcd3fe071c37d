// Package memory provides in-process implementations of the storage ports.
// It is the default driver and the one unit tests run against.
package memory

import (
	"context"
	"sync"

	"github.com/cardmint/cardmint/internal/domain"
)

// CardStore keeps cards in a map keyed by card number. Acquire hands out a
// per-card mutex so concurrent authorizations against the same card serialize
// their read-modify-write sections while other cards proceed independently.
type CardStore struct {
	mu    sync.RWMutex
	cards map[string]domain.Card
	locks map[string]*sync.Mutex
}

func NewCardStore() *CardStore {
	return &CardStore{
		cards: make(map[string]domain.Card),
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *CardStore) Find(ctx context.Context, number string) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.cards[number]
	if !ok {
		return nil, domain.NewCardNotFoundError(number)
	}
	// Copy out so callers never alias store-owned state.
	return &card, nil
}

func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[card.Number]; ok {
		return domain.NewDuplicateCardError(card.Number)
	}
	s.cards[card.Number] = *card
	return nil
}

func (s *CardStore) Save(ctx context.Context, card *domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[card.Number]; !ok {
		return domain.NewCardNotFoundError(card.Number)
	}
	s.cards[card.Number] = *card
	return nil
}

func (s *CardStore) Acquire(ctx context.Context, number string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[number]
	if !ok {
		l = &sync.Mutex{}
		s.locks[number] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock, nil
}
