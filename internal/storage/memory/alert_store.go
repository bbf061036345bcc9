package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// AlertStore is an in-memory implementation of storage.AlertStore.
type AlertStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Alert // keyed by alert_id
}

// NewAlertStore creates a new in-memory alert store.
func NewAlertStore() *AlertStore {
	return &AlertStore{
		data: make(map[string]*domain.Alert),
	}
}

var _ storage.AlertStore = (*AlertStore)(nil)

// Insert adds a new pending alert. Returns ErrDuplicateKey if alert_id exists.
func (s *AlertStore) Insert(_ context.Context, a *domain.Alert) error {
	if a == nil || a.AlertID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.AlertID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[a.AlertID] = copyAlert(a)
	return nil
}

// GetByID retrieves an alert. Returns ErrNotFound if not exists.
func (s *AlertStore) GetByID(_ context.Context, alertID string) (*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[alertID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyAlert(a), nil
}

// Pending retrieves all pending alerts ordered by fired time ASC.
func (s *AlertStore) Pending(_ context.Context) ([]*domain.Alert, error) {
	return s.byStatus(domain.AlertPending), nil
}

// Resolved retrieves all resolved alerts ordered by fired time ASC.
func (s *AlertStore) Resolved(_ context.Context) ([]*domain.Alert, error) {
	return s.byStatus(domain.AlertResolved), nil
}

// UpdatePeak overwrites peak price/timestamp on a pending alert.
func (s *AlertStore) UpdatePeak(_ context.Context, alertID string, peakPrice float64, peakTime int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.data[alertID]
	if !exists || a.Status != domain.AlertPending {
		return storage.ErrNotFound
	}

	a.PeakPrice = &peakPrice
	a.PeakTime = &peakTime
	return nil
}

// Resolve applies the terminal resolution to a pending alert exactly once.
func (s *AlertStore) Resolve(_ context.Context, alertID string, res domain.AlertResolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.data[alertID]
	if !exists {
		return storage.ErrNotFound
	}
	if a.Status == domain.AlertResolved {
		return storage.ErrAlreadyResolved
	}

	a.Status = domain.AlertResolved
	outcome := res.Outcome
	a.ResolvedOutcome = &outcome
	resolvedTime := res.ResolvedTime
	a.ResolvedTime = &resolvedTime
	hours := res.HoursToOutcome
	a.HoursToOutcome = &hours
	priceChange := res.PriceChange
	a.PriceChange = &priceChange
	peakChange := res.PeakPriceChange
	a.PeakPriceChange = &peakChange
	profit := res.ProfitLoss
	a.ProfitLoss = &profit
	correct := res.IsCorrect
	a.IsCorrect = &correct
	return nil
}

// RecentlyFired reports whether any alert for (wallet, market) fired at
// or after the cutoff.
func (s *AlertStore) RecentlyFired(_ context.Context, wallet, marketID string, since int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.data {
		if a.Wallet == wallet && a.MarketID == marketID && a.FiredTime >= since {
			return true, nil
		}
	}
	return false, nil
}

func (s *AlertStore) byStatus(status string) []*domain.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Alert
	for _, a := range s.data {
		if a.Status == status {
			result = append(result, copyAlert(a))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].FiredTime != result[j].FiredTime {
			return result[i].FiredTime < result[j].FiredTime
		}
		return result[i].AlertID < result[j].AlertID
	})

	return result
}

// copyAlert deep-copies the signal slice so callers cannot alias store state.
func copyAlert(a *domain.Alert) *domain.Alert {
	copy := *a
	copy.Signals = append([]string(nil), a.Signals...)
	return &copy
}
