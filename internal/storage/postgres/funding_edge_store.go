package postgres

import (
	"context"
	"fmt"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// FundingEdgeStore implements storage.FundingEdgeStore using PostgreSQL.
type FundingEdgeStore struct {
	pool *Pool
}

// NewFundingEdgeStore creates a new FundingEdgeStore.
func NewFundingEdgeStore(pool *Pool) *FundingEdgeStore {
	return &FundingEdgeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FundingEdgeStore = (*FundingEdgeStore)(nil)

// Upsert writes the edge for (wallet, source). Idempotent.
func (s *FundingEdgeStore) Upsert(ctx context.Context, e *domain.FundingEdge) error {
	if e == nil || e.Wallet == "" || e.Source == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO funding_edges (wallet, source, amount_usd, ts)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wallet, source) DO UPDATE SET
			amount_usd = EXCLUDED.amount_usd,
			ts         = EXCLUDED.ts
	`

	if _, err := s.pool.Exec(ctx, query, e.Wallet, e.Source, e.AmountUSD, e.Timestamp); err != nil {
		return fmt.Errorf("upsert funding edge: %w", err)
	}
	return nil
}

// SourcesByWallet returns the wallet's funding-source identifiers, sorted.
func (s *FundingEdgeStore) SourcesByWallet(ctx context.Context, wallet string) ([]string, error) {
	query := `SELECT source FROM funding_edges WHERE wallet = $1 ORDER BY source ASC`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("sources by wallet: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source rows: %w", err)
	}
	return sources, nil
}

// All returns every edge, ordered by (wallet, source).
func (s *FundingEdgeStore) All(ctx context.Context) ([]*domain.FundingEdge, error) {
	query := `
		SELECT wallet, source, amount_usd, ts
		FROM funding_edges
		ORDER BY wallet ASC, source ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all funding edges: %w", err)
	}
	defer rows.Close()

	var edges []*domain.FundingEdge
	for rows.Next() {
		var e domain.FundingEdge
		if err := rows.Scan(&e.Wallet, &e.Source, &e.AmountUSD, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan funding edge row: %w", err)
		}
		edges = append(edges, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate funding edge rows: %w", err)
	}
	return edges, nil
}
