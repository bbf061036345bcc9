package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Trade // keyed by trade_id
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.Trade),
	}
}

var _ storage.TradeStore = (*TradeStore)(nil)

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(_ context.Context, t *domain.Trade) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TradeID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *t
	s.data[t.TradeID] = &copy
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(_ context.Context, tradeID string) (*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[tradeID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *t
	return &copy, nil
}

// AvgSizeUSD returns the mean trade size on a market since the cutoff.
func (s *TradeStore) AvgSizeUSD(_ context.Context, marketID string, since int64) (float64, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	var n int
	for _, t := range s.data {
		if t.MarketID == marketID && t.Timestamp >= since {
			sum += t.SizeUSD
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return sum / float64(n), n, nil
}

// DistinctWallets returns distinct wallets on a market outcome since the cutoff.
func (s *TradeStore) DistinctWallets(_ context.Context, marketID, outcome string, since int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, t := range s.data {
		if t.MarketID == marketID && t.Outcome == outcome && t.Timestamp >= since {
			seen[t.Wallet] = struct{}{}
		}
	}

	wallets := make([]string, 0, len(seen))
	for w := range seen {
		wallets = append(wallets, w)
	}
	sort.Strings(wallets)
	return wallets, nil
}

// CountByWallet returns the wallet's trade count since the cutoff.
func (s *TradeStore) CountByWallet(_ context.Context, wallet string, since int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	for _, t := range s.data {
		if t.Wallet == wallet && t.Timestamp >= since {
			n++
		}
	}
	return n, nil
}

// SumSizeUSD returns total traded USD on a market since the cutoff.
func (s *TradeStore) SumSizeUSD(_ context.Context, marketID string, since int64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	for _, t := range s.data {
		if t.MarketID == marketID && t.Timestamp >= since {
			sum += t.SizeUSD
		}
	}
	return sum, nil
}

// RecentByMarket retrieves trades on a market since the cutoff, timestamp ASC.
func (s *TradeStore) RecentByMarket(_ context.Context, marketID string, since int64) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.MarketID == marketID && t.Timestamp >= since {
			copy := *t
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].TradeID < result[j].TradeID
	})

	return result, nil
}
