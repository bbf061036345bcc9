package memory

import (
	"context"
	"sync"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// WalletStore is an in-memory implementation of storage.WalletStore.
type WalletStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Wallet // keyed by address
}

// NewWalletStore creates a new in-memory wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		data: make(map[string]*domain.Wallet),
	}
}

var _ storage.WalletStore = (*WalletStore)(nil)

// Record creates the wallet on first observation or increments counters.
func (s *WalletStore) Record(_ context.Context, address string, ts int64, sizeUSD float64) (*domain.Wallet, error) {
	if address == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, exists := s.data[address]
	if !exists {
		w = &domain.Wallet{
			Address:   address,
			FirstSeen: ts,
		}
		s.data[address] = w
	}

	w.TradeCount++
	w.VolumeUSD += sizeUSD
	if ts > w.LastSeen {
		w.LastSeen = ts
	}

	copy := *w
	return &copy, nil
}

// GetByAddress retrieves a wallet. Returns ErrNotFound if never seen.
func (s *WalletStore) GetByAddress(_ context.Context, address string) (*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *w
	return &copy, nil
}
