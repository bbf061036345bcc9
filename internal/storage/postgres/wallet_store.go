package postgres

import (
	"context"
	"fmt"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// WalletStore implements storage.WalletStore using PostgreSQL.
type WalletStore struct {
	pool *Pool
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Record creates the wallet on first observation or increments counters.
// first_seen is preserved across conflicts so wallet age stays stable.
func (s *WalletStore) Record(ctx context.Context, address string, ts int64, sizeUSD float64) (*domain.Wallet, error) {
	if address == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO wallets (address, first_seen, last_seen, trade_count, volume_usd)
		VALUES ($1, $2, $2, 1, $3)
		ON CONFLICT (address) DO UPDATE SET
			last_seen   = GREATEST(wallets.last_seen, EXCLUDED.last_seen),
			trade_count = wallets.trade_count + 1,
			volume_usd  = wallets.volume_usd + EXCLUDED.volume_usd
		RETURNING address, first_seen, last_seen, trade_count, volume_usd
	`

	var w domain.Wallet
	err := s.pool.QueryRow(ctx, query, address, ts, sizeUSD).Scan(
		&w.Address, &w.FirstSeen, &w.LastSeen, &w.TradeCount, &w.VolumeUSD,
	)
	if err != nil {
		return nil, fmt.Errorf("record wallet: %w", err)
	}
	return &w, nil
}

// GetByAddress retrieves a wallet. Returns ErrNotFound if never seen.
func (s *WalletStore) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	query := `
		SELECT address, first_seen, last_seen, trade_count, volume_usd
		FROM wallets
		WHERE address = $1
	`

	var w domain.Wallet
	err := s.pool.QueryRow(ctx, query, address).Scan(
		&w.Address, &w.FirstSeen, &w.LastSeen, &w.TradeCount, &w.VolumeUSD,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet by address: %w", err)
	}
	return &w, nil
}
