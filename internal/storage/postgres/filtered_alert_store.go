package postgres

import (
	"context"
	"fmt"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// FilteredAlertStore implements storage.FilteredAlertStore using PostgreSQL.
type FilteredAlertStore struct {
	pool *Pool
}

// NewFilteredAlertStore creates a new FilteredAlertStore.
func NewFilteredAlertStore(pool *Pool) *FilteredAlertStore {
	return &FilteredAlertStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FilteredAlertStore = (*FilteredAlertStore)(nil)

// Insert appends an audit record.
func (s *FilteredAlertStore) Insert(ctx context.Context, f *domain.FilteredAlert) error {
	if f == nil || f.Wallet == "" || f.Reason == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO filtered_alerts (wallet, market_id, question, signals, reason, price, size_usd, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		f.Wallet, f.MarketID, f.Question, f.Signals, f.Reason, f.Price, f.SizeUSD, f.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert filtered alert: %w", err)
	}
	return nil
}

// CountByReason returns audit counts keyed by gate-failure reason.
func (s *FilteredAlertStore) CountByReason(ctx context.Context) (map[string]int, error) {
	query := `SELECT reason, COUNT(*) FROM filtered_alerts GROUP BY reason`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count filtered alerts by reason: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, fmt.Errorf("scan filtered alert count row: %w", err)
		}
		counts[reason] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filtered alert count rows: %w", err)
	}
	return counts, nil
}
