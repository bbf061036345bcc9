package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

type edgeKey struct {
	wallet string
	source string
}

// FundingEdgeStore is an in-memory implementation of storage.FundingEdgeStore.
type FundingEdgeStore struct {
	mu   sync.RWMutex
	data map[edgeKey]*domain.FundingEdge
}

// NewFundingEdgeStore creates a new in-memory funding edge store.
func NewFundingEdgeStore() *FundingEdgeStore {
	return &FundingEdgeStore{
		data: make(map[edgeKey]*domain.FundingEdge),
	}
}

var _ storage.FundingEdgeStore = (*FundingEdgeStore)(nil)

// Upsert writes the edge for (wallet, source). Idempotent.
func (s *FundingEdgeStore) Upsert(_ context.Context, e *domain.FundingEdge) error {
	if e == nil || e.Wallet == "" || e.Source == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *e
	s.data[edgeKey{wallet: e.Wallet, source: e.Source}] = &copy
	return nil
}

// SourcesByWallet returns the wallet's funding-source identifiers, sorted.
func (s *FundingEdgeStore) SourcesByWallet(_ context.Context, wallet string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sources []string
	for k := range s.data {
		if k.wallet == wallet {
			sources = append(sources, k.source)
		}
	}
	sort.Strings(sources)
	return sources, nil
}

// All returns every edge.
func (s *FundingEdgeStore) All(_ context.Context) ([]*domain.FundingEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.FundingEdge, 0, len(s.data))
	for _, e := range s.data {
		copy := *e
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Wallet != result[j].Wallet {
			return result[i].Wallet < result[j].Wallet
		}
		return result[i].Source < result[j].Source
	})

	return result, nil
}
