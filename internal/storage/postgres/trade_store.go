package postgres

import (
	"context"
	"fmt"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	query := `
		INSERT INTO trades (
			trade_id, tx_hash, wallet, market_id, question, category,
			outcome, side, price, size_usd, ts
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11
		)
	`

	_, err := s.pool.Exec(ctx, query,
		t.TradeID, t.TxHash, t.Wallet, t.MarketID, t.Question, t.Category,
		t.Outcome, t.Side, t.Price, t.SizeUSD, t.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (*domain.Trade, error) {
	query := `
		SELECT trade_id, tx_hash, wallet, market_id, question, category,
		       outcome, side, price, size_usd, ts
		FROM trades
		WHERE trade_id = $1
	`

	row := s.pool.QueryRow(ctx, query, tradeID)

	var t domain.Trade
	err := row.Scan(
		&t.TradeID, &t.TxHash, &t.Wallet, &t.MarketID, &t.Question, &t.Category,
		&t.Outcome, &t.Side, &t.Price, &t.SizeUSD, &t.Timestamp,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	return &t, nil
}

// AvgSizeUSD returns the mean trade size on a market since the cutoff.
func (s *TradeStore) AvgSizeUSD(ctx context.Context, marketID string, since int64) (float64, int, error) {
	query := `
		SELECT COALESCE(AVG(size_usd), 0), COUNT(*)
		FROM trades
		WHERE market_id = $1 AND ts >= $2
	`

	var avg float64
	var n int
	if err := s.pool.QueryRow(ctx, query, marketID, since).Scan(&avg, &n); err != nil {
		return 0, 0, fmt.Errorf("avg trade size: %w", err)
	}
	return avg, n, nil
}

// DistinctWallets returns distinct wallets on a market outcome since the cutoff.
func (s *TradeStore) DistinctWallets(ctx context.Context, marketID, outcome string, since int64) ([]string, error) {
	query := `
		SELECT DISTINCT wallet
		FROM trades
		WHERE market_id = $1 AND outcome = $2 AND ts >= $3
		ORDER BY wallet ASC
	`

	rows, err := s.pool.Query(ctx, query, marketID, outcome, since)
	if err != nil {
		return nil, fmt.Errorf("distinct wallets: %w", err)
	}
	defer rows.Close()

	var wallets []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return wallets, nil
}

// CountByWallet returns the wallet's trade count since the cutoff.
func (s *TradeStore) CountByWallet(ctx context.Context, wallet string, since int64) (int, error) {
	query := `SELECT COUNT(*) FROM trades WHERE wallet = $1 AND ts >= $2`

	var n int
	if err := s.pool.QueryRow(ctx, query, wallet, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trades by wallet: %w", err)
	}
	return n, nil
}

// SumSizeUSD returns total traded USD on a market since the cutoff.
func (s *TradeStore) SumSizeUSD(ctx context.Context, marketID string, since int64) (float64, error) {
	query := `SELECT COALESCE(SUM(size_usd), 0) FROM trades WHERE market_id = $1 AND ts >= $2`

	var sum float64
	if err := s.pool.QueryRow(ctx, query, marketID, since).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum trade size: %w", err)
	}
	return sum, nil
}

// RecentByMarket retrieves trades on a market since the cutoff, timestamp ASC.
func (s *TradeStore) RecentByMarket(ctx context.Context, marketID string, since int64) ([]*domain.Trade, error) {
	query := `
		SELECT trade_id, tx_hash, wallet, market_id, question, category,
		       outcome, side, price, size_usd, ts
		FROM trades
		WHERE market_id = $1 AND ts >= $2
		ORDER BY ts ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, marketID, since)
	if err != nil {
		return nil, fmt.Errorf("recent trades by market: %w", err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		var t domain.Trade
		err := rows.Scan(
			&t.TradeID, &t.TxHash, &t.Wallet, &t.MarketID, &t.Question, &t.Category,
			&t.Outcome, &t.Side, &t.Price, &t.SizeUSD, &t.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		trades = append(trades, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}
	return trades, nil
}
