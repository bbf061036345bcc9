package postgres

import (
	"context"
	"fmt"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// MarketEventStore implements storage.MarketEventStore using PostgreSQL.
type MarketEventStore struct {
	pool *Pool
}

// NewMarketEventStore creates a new MarketEventStore.
func NewMarketEventStore(pool *Pool) *MarketEventStore {
	return &MarketEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MarketEventStore = (*MarketEventStore)(nil)

// Upsert writes the market's resolution record, last write wins.
func (s *MarketEventStore) Upsert(ctx context.Context, e *domain.MarketEvent) error {
	if e == nil || e.MarketID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO market_events (
			market_id, question, category, event_type,
			resolved, resolved_outcome, resolution_price, resolution_ts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (market_id) DO UPDATE SET
			question         = EXCLUDED.question,
			category         = EXCLUDED.category,
			event_type       = EXCLUDED.event_type,
			resolved         = EXCLUDED.resolved,
			resolved_outcome = EXCLUDED.resolved_outcome,
			resolution_price = EXCLUDED.resolution_price,
			resolution_ts    = EXCLUDED.resolution_ts
	`

	_, err := s.pool.Exec(ctx, query,
		e.MarketID, e.Question, e.Category, e.EventType,
		e.Resolved, e.ResolvedOutcome, e.ResolutionPrice, e.ResolutionTime,
	)
	if err != nil {
		return fmt.Errorf("upsert market event: %w", err)
	}
	return nil
}

// GetByID retrieves a market event. Returns ErrNotFound if not exists.
func (s *MarketEventStore) GetByID(ctx context.Context, marketID string) (*domain.MarketEvent, error) {
	query := `
		SELECT market_id, question, category, event_type,
		       resolved, resolved_outcome, resolution_price, resolution_ts
		FROM market_events
		WHERE market_id = $1
	`

	var e domain.MarketEvent
	err := s.pool.QueryRow(ctx, query, marketID).Scan(
		&e.MarketID, &e.Question, &e.Category, &e.EventType,
		&e.Resolved, &e.ResolvedOutcome, &e.ResolutionPrice, &e.ResolutionTime,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get market event by id: %w", err)
	}
	return &e, nil
}
