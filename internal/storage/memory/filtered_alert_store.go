package memory

import (
	"context"
	"sync"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// FilteredAlertStore is an in-memory implementation of storage.FilteredAlertStore.
type FilteredAlertStore struct {
	mu   sync.RWMutex
	data []*domain.FilteredAlert
}

// NewFilteredAlertStore creates a new in-memory filtered alert store.
func NewFilteredAlertStore() *FilteredAlertStore {
	return &FilteredAlertStore{}
}

var _ storage.FilteredAlertStore = (*FilteredAlertStore)(nil)

// Insert appends an audit record.
func (s *FilteredAlertStore) Insert(_ context.Context, f *domain.FilteredAlert) error {
	if f == nil || f.Wallet == "" || f.Reason == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *f
	copy.Signals = append([]string(nil), f.Signals...)
	s.data = append(s.data, &copy)
	return nil
}

// CountByReason returns audit counts keyed by gate-failure reason.
func (s *FilteredAlertStore) CountByReason(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, f := range s.data {
		counts[f.Reason]++
	}
	return counts, nil
}
