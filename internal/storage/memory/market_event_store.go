package memory

import (
	"context"
	"sync"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// MarketEventStore is an in-memory implementation of storage.MarketEventStore.
type MarketEventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.MarketEvent // keyed by market_id
}

// NewMarketEventStore creates a new in-memory market event store.
func NewMarketEventStore() *MarketEventStore {
	return &MarketEventStore{
		data: make(map[string]*domain.MarketEvent),
	}
}

var _ storage.MarketEventStore = (*MarketEventStore)(nil)

// Upsert writes the market's resolution record, last write wins.
func (s *MarketEventStore) Upsert(_ context.Context, e *domain.MarketEvent) error {
	if e == nil || e.MarketID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *e
	s.data[e.MarketID] = &copy
	return nil
}

// GetByID retrieves a market event. Returns ErrNotFound if not exists.
func (s *MarketEventStore) GetByID(_ context.Context, marketID string) (*domain.MarketEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[marketID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *e
	return &copy, nil
}
