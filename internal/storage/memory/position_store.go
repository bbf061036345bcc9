package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// PositionStore is an in-memory implementation of storage.PositionStore.
type PositionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Position // keyed by position_id
}

// NewPositionStore creates a new in-memory position store.
func NewPositionStore() *PositionStore {
	return &PositionStore{
		data: make(map[string]*domain.Position),
	}
}

var _ storage.PositionStore = (*PositionStore)(nil)

// Insert adds a new open position. Returns ErrDuplicateKey if position_id exists.
func (s *PositionStore) Insert(_ context.Context, p *domain.Position) error {
	if p == nil || p.PositionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.PositionID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *p
	s.data[p.PositionID] = &copy
	return nil
}

// OpenByKey retrieves open positions for (wallet, market, outcome),
// entry time ASC then position_id ASC.
func (s *PositionStore) OpenByKey(_ context.Context, wallet, marketID, outcome string) ([]*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Position
	for _, p := range s.data {
		if p.Status == domain.PositionOpen && p.Wallet == wallet && p.MarketID == marketID && p.Outcome == outcome {
			copy := *p
			result = append(result, &copy)
		}
	}

	sortPositionsByEntry(result)
	return result, nil
}

// Close transitions one position to closed. Returns ErrNotFound if the
// position does not exist or is already closed.
func (s *PositionStore) Close(_ context.Context, positionID string, exitPrice float64, exitTime int64, profitLoss, holdHours float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.data[positionID]
	if !exists || p.Status != domain.PositionOpen {
		return storage.ErrNotFound
	}

	p.Status = domain.PositionClosed
	p.ExitPrice = &exitPrice
	p.ExitTime = &exitTime
	p.ProfitLoss = &profitLoss
	p.HoldHours = &holdHours
	return nil
}

// ClosedByWalletMarket retrieves the wallet's closed positions in a market.
func (s *PositionStore) ClosedByWalletMarket(_ context.Context, wallet, marketID string) ([]*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Position
	for _, p := range s.data {
		if p.Status == domain.PositionClosed && p.Wallet == wallet && p.MarketID == marketID {
			copy := *p
			result = append(result, &copy)
		}
	}

	sortPositionsByEntry(result)
	return result, nil
}

// ClosedByExitRange retrieves closed positions in a market whose exit
// time falls within [start, end] (inclusive).
func (s *PositionStore) ClosedByExitRange(_ context.Context, marketID string, start, end int64) ([]*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Position
	for _, p := range s.data {
		if p.Status != domain.PositionClosed || p.MarketID != marketID || p.ExitTime == nil {
			continue
		}
		if *p.ExitTime >= start && *p.ExitTime <= end {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if *result[i].ExitTime != *result[j].ExitTime {
			return *result[i].ExitTime < *result[j].ExitTime
		}
		return result[i].PositionID < result[j].PositionID
	})

	return result, nil
}

func sortPositionsByEntry(positions []*domain.Position) {
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].EntryTime != positions[j].EntryTime {
			return positions[i].EntryTime < positions[j].EntryTime
		}
		return positions[i].PositionID < positions[j].PositionID
	})
}
