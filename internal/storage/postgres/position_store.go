package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// PositionStore implements storage.PositionStore using PostgreSQL.
type PositionStore struct {
	pool *Pool
}

// NewPositionStore creates a new PositionStore.
func NewPositionStore(pool *Pool) *PositionStore {
	return &PositionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PositionStore = (*PositionStore)(nil)

const positionColumns = `
	position_id, wallet, market_id, outcome,
	entry_price, entry_amount, entry_ts, status,
	exit_price, exit_ts, profit_loss, hold_hours
`

// Insert adds a new open position. Returns ErrDuplicateKey if position_id exists.
func (s *PositionStore) Insert(ctx context.Context, p *domain.Position) error {
	if p == nil || p.PositionID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO positions (
			position_id, wallet, market_id, outcome,
			entry_price, entry_amount, entry_ts, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		p.PositionID, p.Wallet, p.MarketID, p.Outcome,
		p.EntryPrice, p.EntryAmount, p.EntryTime, domain.PositionOpen,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert position: %w", err)
	}
	return nil
}

// OpenByKey retrieves open positions for (wallet, market, outcome),
// entry time ASC then position_id ASC.
func (s *PositionStore) OpenByKey(ctx context.Context, wallet, marketID, outcome string) ([]*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE wallet = $1 AND market_id = $2 AND outcome = $3 AND status = 'open'
		ORDER BY entry_ts ASC, position_id ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet, marketID, outcome)
	if err != nil {
		return nil, fmt.Errorf("open positions by key: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// Close transitions one position to closed. Returns ErrNotFound if the
// position does not exist or is already closed.
func (s *PositionStore) Close(ctx context.Context, positionID string, exitPrice float64, exitTime int64, profitLoss, holdHours float64) error {
	query := `
		UPDATE positions
		SET status = 'closed', exit_price = $2, exit_ts = $3, profit_loss = $4, hold_hours = $5
		WHERE position_id = $1 AND status = 'open'
	`

	tag, err := s.pool.Exec(ctx, query, positionID, exitPrice, exitTime, profitLoss, holdHours)
	if err != nil {
		return fmt.Errorf("close position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ClosedByWalletMarket retrieves the wallet's closed positions in a market.
func (s *PositionStore) ClosedByWalletMarket(ctx context.Context, wallet, marketID string) ([]*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE wallet = $1 AND market_id = $2 AND status = 'closed'
		ORDER BY entry_ts ASC, position_id ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet, marketID)
	if err != nil {
		return nil, fmt.Errorf("closed positions by wallet/market: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// ClosedByExitRange retrieves closed positions in a market whose exit
// time falls within [start, end] (inclusive).
func (s *PositionStore) ClosedByExitRange(ctx context.Context, marketID string, start, end int64) ([]*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE market_id = $1 AND status = 'closed' AND exit_ts BETWEEN $2 AND $3
		ORDER BY exit_ts ASC, position_id ASC
	`

	rows, err := s.pool.Query(ctx, query, marketID, start, end)
	if err != nil {
		return nil, fmt.Errorf("closed positions by exit range: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// scanPositions scans multiple rows into a slice of Position.
func scanPositions(rows pgx.Rows) ([]*domain.Position, error) {
	var positions []*domain.Position

	for rows.Next() {
		var p domain.Position
		err := rows.Scan(
			&p.PositionID, &p.Wallet, &p.MarketID, &p.Outcome,
			&p.EntryPrice, &p.EntryAmount, &p.EntryTime, &p.Status,
			&p.ExitPrice, &p.ExitTime, &p.ProfitLoss, &p.HoldHours,
		)
		if err != nil {
			return nil, fmt.Errorf("scan position row: %w", err)
		}
		positions = append(positions, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate position rows: %w", err)
	}

	return positions, nil
}
