package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cardmint/cardmint/internal/domain"
)

// BINStore keeps registered BIN prefixes keyed by number.
type BINStore struct {
	mu   sync.RWMutex
	bins map[string]domain.BIN
}

func NewBINStore() *BINStore {
	return &BINStore{bins: make(map[string]domain.BIN)}
}

func (s *BINStore) Create(ctx context.Context, bin *domain.BIN) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bins[bin.Number]; ok {
		return domain.NewDuplicateBINError(bin.Number)
	}
	s.bins[bin.Number] = *bin
	return nil
}

func (s *BINStore) Find(ctx context.Context, number string) (*domain.BIN, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bin, ok := s.bins[number]
	if !ok {
		return nil, domain.NewBINNotFoundError(number)
	}
	return &bin, nil
}

func (s *BINStore) List(ctx context.Context) ([]*domain.BIN, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.BIN, 0, len(s.bins))
	for number := range s.bins {
		bin := s.bins[number]
		out = append(out, &bin)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}
